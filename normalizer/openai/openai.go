//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

// Package openai provides an LLM-backed heading corrector using the
// OpenAI chat completions API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"trpc.group/trpc-go/trpc-raggen-go/normalizer"
)

// Verify that Corrector implements the normalizer.Corrector interface.
var _ normalizer.Corrector = (*Corrector)(nil)

const (
	// DefaultModel is the default chat model used for heading correction.
	DefaultModel = "gpt-4o"
	// DefaultTimeout bounds a single correction request.
	DefaultTimeout = 30 * time.Second
)

// systemPrompt instructs the model to fix heading levels without
// rearranging headings and to answer with JSON only.
const systemPrompt = "Given the following headers with incorrect levels, " +
	"adjust them to the correct hierarchical structure. Do not rearrange " +
	"the headers, do not add or remove any. Output results exclusively as " +
	"a JSON object of the form {\"headers\": [{\"text\": string, \"level\": int}, ...]}."

// headingList is the wire format exchanged with the model.
type headingList struct {
	Headers []normalizer.Heading `json:"headers"`
}

// Corrector corrects heading levels via the OpenAI chat completions API.
type Corrector struct {
	client         openai.Client
	model          string
	apiKey         string
	baseURL        string
	timeout        time.Duration
	requestOptions []option.RequestOption
}

// Option is a functional option for configuring the Corrector.
type Option func(*Corrector)

// WithModel sets the chat model to use.
func WithModel(model string) Option {
	return func(c *Corrector) {
		c.model = model
	}
}

// WithAPIKey sets the OpenAI API key.
// If not provided, will use OPENAI_API_KEY environment variable.
func WithAPIKey(apiKey string) Option {
	return func(c *Corrector) {
		c.apiKey = apiKey
	}
}

// WithBaseURL sets the base URL for the API.
// Optional, for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) Option {
	return func(c *Corrector) {
		c.baseURL = baseURL
	}
}

// WithTimeout bounds a single correction request. Non-positive values
// disable the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Corrector) {
		c.timeout = timeout
	}
}

// WithRequestOptions sets additional options for the client requests.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(c *Corrector) {
		c.requestOptions = append(c.requestOptions, opts...)
	}
}

// New creates a new OpenAI heading corrector with the given options.
func New(opts ...Option) *Corrector {
	c := &Corrector{
		model:   DefaultModel,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	var clientOpts []option.RequestOption
	if c.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(c.apiKey))
	}
	if c.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(c.baseURL))
	}
	// The normalizer owns retry policy; disable the SDK's internal retries.
	clientOpts = append(clientOpts, option.WithMaxRetries(0))
	c.client = openai.NewClient(clientOpts...)

	return c
}

// Correct implements the normalizer.Corrector interface.
func (c *Corrector) Correct(ctx context.Context, headings []normalizer.Heading) ([]normalizer.Heading, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(headingList{Headers: headings})
	if err != nil {
		return nil, fmt.Errorf("failed to encode headings: %w", err)
	}

	response, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(string(payload)),
		},
	}, c.requestOptions...)
	if err != nil {
		return nil, fmt.Errorf("heading correction request failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("heading correction returned no choices")
	}

	var corrected headingList
	content := stripCodeFence(response.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &corrected); err != nil {
		return nil, fmt.Errorf("failed to decode corrected headings: %w", err)
	}
	return corrected.Headers, nil
}

// stripCodeFence removes a surrounding markdown code fence, which chat
// models frequently wrap JSON answers in.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
