package gemini

import (
	"context"
	"errors"
	"strings"

	"cloud-agent/internal/application/port/output"
	"cloud-agent/internal/domain/entity"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
)

var _ output.FormatterPort = (*Formatter)(nil)

// Formatter rewrites tool output as prose using a streamed generation with a
// fixed system instruction. Chunks are accumulated; nothing partial is
// returned on failure.
type Formatter struct {
	newModel func() *genai.GenerativeModel
	stream   streamFunc
	model    string
	prompt   string
	logger   output.LoggerPort
}

// chunkIterator is satisfied by *genai.GenerateContentResponseIterator.
type chunkIterator interface {
	Next() (*genai.GenerateContentResponse, error)
}

type streamFunc func(ctx context.Context, m *genai.GenerativeModel, parts ...genai.Part) chunkIterator

func NewFormatter(client *genai.Client, model, prompt string, logger output.LoggerPort) *Formatter {
	return &Formatter{
		newModel: func() *genai.GenerativeModel { return client.GenerativeModel(model) },
		stream: func(ctx context.Context, m *genai.GenerativeModel, parts ...genai.Part) chunkIterator {
			return m.GenerateContentStream(ctx, parts...)
		},
		model:  model,
		prompt: prompt,
		logger: logger,
	}
}

func (f *Formatter) Format(ctx context.Context, content string) (string, error) {
	model := f.newModel()
	model.SystemInstruction = genai.NewUserContent(genai.Text(f.prompt))

	iter := f.stream(ctx, model, genai.Text(content))

	var sb strings.Builder
	chunks := 0
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return "", entity.NewActionError("gemini.GenerateContentStream", entity.ErrProvider, err)
		}
		chunks++
		sb.WriteString(chunkText(resp))
	}

	f.logger.Debug("Formatter stream completed", "model", f.model, "chunks", chunks, "length", sb.Len())
	return sb.String(), nil
}

func chunkText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}
