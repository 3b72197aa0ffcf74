// Package encourage writes the personal part of the daily email.
package encourage

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/pure-golang/encourager/chat"
	"github.com/pure-golang/encourager/logger"
)

var tracer = otel.Tracer("github.com/pure-golang/encourager/encourage")

// Fallback is sent when no message could be generated.
const Fallback = "I appreciate you sharing your thoughts with me. Stay positive!"

const (
	Temperature = 0.7
	MaxTokens   = 500
)

const generalSystemPrompt = `You are a compassionate and supportive friend.
Generate a brief, uplifting general message for someone's day. Keep it warm,
encouraging, and universal (1-2 paragraphs).
Do not start with a greeting and do not sign off, the email adds both.`

const generalUserPrompt = `Generate a positive, encouraging message that:
1. Offers general encouragement for the day ahead
2. Includes a positive perspective on life
3. Ends with an uplifting note
Keep it brief and warm.`

const personalSystemPrompt = `You are a compassionate and supportive friend.
Your goal is to provide uplifting, encouraging messages that acknowledge the person's
feelings while offering a positive perspective. Keep responses warm, personal, and concise
(2-3 paragraphs maximum).
Do not start with a greeting and do not sign off, the email adds both.`

const personalUserPrompt = `Based on this person's sharing: %q

Generate an uplifting, supportive response that:
1. Acknowledges their feelings
2. Offers a positive perspective
3. Provides gentle encouragement
4. Ends with a hopeful note`

var (
	// greeting matches a leading salutation clause such as "Dear Ann," or
	// "Hi there!", whether or not the line goes on.
	greeting = regexp.MustCompile(`(?i)^(dear|hi|hello|hey|greetings|good (morning|afternoon|evening|day))\b[^\n.?!,:]{0,40}[,!:]\s*`)

	// addressee matches a name that may follow "Good morning, " on the
	// same line, such as "Ann!" or "my friend,".
	addressee = regexp.MustCompile(`^((?i:my|dear) \p{L}[\p{L}'-]*|\p{Lu}[\p{L}'-]*( \p{Lu}[\p{L}'-]*)?)[!,]\s*`)
)

// Prompt builds the completion request for what a recipient shared.
// An empty content gets the general prompt.
func Prompt(content string) chat.Request {
	content = strings.TrimSpace(content)

	messages := []chat.Message{
		{Role: chat.RoleSystem, Content: generalSystemPrompt},
		{Role: chat.RoleUser, Content: generalUserPrompt},
	}
	if content != "" {
		messages = []chat.Message{
			{Role: chat.RoleSystem, Content: personalSystemPrompt},
			{Role: chat.RoleUser, Content: fmt.Sprintf(personalUserPrompt, content)},
		}
	}

	return chat.Request{
		Messages:    messages,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	}
}

// Generator produces encouragement through a chat model.
type Generator struct {
	completer chat.Completer
}

func NewGenerator(completer chat.Completer) *Generator {
	return &Generator{completer: completer}
}

// Generate returns a message for content, or Fallback when the model
// fails. It never returns an error.
func (g *Generator) Generate(ctx context.Context, content string) string {
	ctx, span := tracer.Start(ctx, "Generator.Generate")
	defer span.End()

	span.SetAttributes(attribute.Bool("encourage.personal", strings.TrimSpace(content) != ""))

	text, err := g.completer.Complete(ctx, Prompt(content))
	if err == nil {
		text = StripGreeting(text)
		if text == "" {
			err = chat.ErrEmptyCompletion
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fallback")
		span.SetAttributes(attribute.Bool("encourage.fallback", true))
		logger.FromContextWithErr(ctx, err).Warn("failed to generate message, using fallback")
		return Fallback
	}

	span.SetStatus(codes.Ok, "")
	return text
}

// StripGreeting removes leading salutations, including one that opens a
// sentence, and capitalises what remains. A text that is nothing but a
// salutation comes back empty.
func StripGreeting(text string) string {
	text = strings.TrimSpace(text)
	for range 3 {
		m := greeting.FindString(text)
		if m == "" {
			break
		}
		text = text[len(m):]
		if strings.HasSuffix(strings.TrimRight(m, " \t"), ",") {
			text = text[len(addressee.FindString(text)):]
		}
		text = strings.TrimSpace(text)
	}
	return capitalize(text)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
