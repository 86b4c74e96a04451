/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	roleSystem    = "system"
	roleUser      = "user"
	roleAssistant = "assistant"
)

// errAborted reports that a backend call was stopped by the caller
// (disconnect, or displacement by a newer turn) rather than failing.
var errAborted = errors.New("request aborted")

// Message is one role-tagged conversation entry, matching the wire
// format of the chat endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatBackend streams one reply from the text-generation backend.
// onDelta is invoked for each text chunk as it arrives; the full
// concatenated reply is returned on normal completion. A cancelled
// context yields errAborted; anything else is a backend failure.
type chatBackend interface {
	stream(ctx context.Context, system string, history []Message, onDelta func(string)) (string, error)
}

type openaiBackend struct {
	client openai.Client
	model  string
}

func newOpenAIBackend(cfg *Config) *openaiBackend {
	return &openaiBackend{
		client: openai.NewClient(option.WithAPIKey(cfg.apiKey)),
		model:  cfg.model,
	}
}

func (b *openaiBackend) stream(ctx context.Context, system string, history []Message, onDelta func(string)) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(b.model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1),
	}
	params.Messages = append(params.Messages, openai.SystemMessage(system))

	for _, msg := range history {
		switch msg.Role {
		case roleUser:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		case roleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Content))
		}
	}

	stream := b.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			onDelta(chunk.Choices[0].Delta.Content)
		}
	}

	if err := stream.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			return "", errAborted
		}
		return "", err
	}

	if len(acc.Choices) == 0 {
		return "", errors.New("backend returned no choices")
	}
	return acc.Choices[0].Message.Content, nil
}
