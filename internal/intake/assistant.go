package intake

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cuentame-ec/cuentame/internal/classifier"
)

// degradedReply is sent when the chat model is unavailable. The
// conversation keeps collecting turns either way.
const degradedReply = "Gracias por contarme. En este momento no puedo responderte con detalle, " +
	"pero tu mensaje quedó guardado. Puedes seguir escribiendo o enviar tu reporte cuando estés lista o listo."

const assistantSystemPrompt = `Eres el asistente de Cuéntame, una plataforma escolar ecuatoriana donde
estudiantes, representantes y docentes reportan situaciones de conflicto de forma confidencial.

Tu tarea es acompañar a la persona mientras cuenta lo que pasó:
- Responde siempre en español, con calidez y sin juzgar.
- Haz una sola pregunta por turno para entender qué pasó, cuándo, dónde y quiénes participaron.
- Nunca pidas nombres completos ni datos que identifiquen a la persona que reporta.
- No prometas resultados ni menciones sanciones. No des diagnósticos.
- Si detectas una situación de peligro inmediato, sugiere con delicadeza avisar a una persona adulta de confianza.
- Cuando la persona ya contó lo esencial, recuérdale que puede presionar "Enviar reporte" para que el DECE lo revise.

Mantén tus respuestas cortas, de dos a cuatro oraciones.`

// Assistant produces the empathetic chat replies shown to reporters
// while they narrate what happened.
type Assistant struct {
	client  classifier.LLMClient
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewAssistant builds the intake chat assistant. client may be nil;
// every reply then degrades to the canned message.
func NewAssistant(client classifier.LLMClient, model string, timeout time.Duration, logger *slog.Logger) *Assistant {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{client: client, model: model, timeout: timeout, logger: logger}
}

// Reply generates the assistant's next message for the conversation.
// Never returns an error: model failures degrade to a fixed reply.
func (a *Assistant) Reply(ctx context.Context, turns []classifier.Turn) string {
	if a.client == nil {
		return degradedReply
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req := classifier.LLMRequest{
		Model:       a.model,
		System:      []string{assistantSystemPrompt},
		Messages:    turnsToMessages(turns),
		MaxTokens:   400,
		Temperature: 0.6,
	}
	resp, err := a.client.Complete(ctx, req)
	if err != nil {
		a.logger.Warn("assistant reply degraded", "error", err)
		return degradedReply
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return degradedReply
	}
	return text
}

func turnsToMessages(turns []classifier.Turn) []classifier.ChatMessage {
	msgs := make([]classifier.ChatMessage, 0, len(turns))
	for _, t := range turns {
		role := classifier.ChatRoleUser
		if t.Sender == classifier.SenderAssistant {
			role = classifier.ChatRoleAssistant
		}
		msgs = append(msgs, classifier.ChatMessage{Role: role, Content: t.Text})
	}
	return msgs
}
