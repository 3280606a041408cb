package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cuentame-ec/cuentame/internal/protocol"
	"github.com/cuentame-ec/cuentame/pkg/logging"
)

// Typologies is the fixed MINEDUC category catalog. The classifier is
// constrained to exactly these values.
var Typologies = []string{
	"Conflicto leve entre pares",
	"Acoso escolar (bullying)",
	"Violencia física grave",
	"Violencia sexual",
	"Violencia intrafamiliar detectada",
	"Discriminación o xenofobia",
	"Ideación suicida o autolesiones",
	"Violencia digital",
	"Abandono escolar o negligencia",
	"Conflicto docente-estudiante",
}

// TypologyFallback is the mildest category, used when classification fails.
const TypologyFallback = "Conflicto leve entre pares"

var knownTypologies = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Typologies))
	for _, t := range Typologies {
		m[t] = struct{}{}
	}
	return m
}()

// Turn is one entry of a conversation transcript.
type Turn struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"` // "reporter" or "assistant"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	SenderReporter  = "reporter"
	SenderAssistant = "assistant"
)

// Psychographics holds the five string-list facets the classifier
// extracts about the reporter.
type Psychographics struct {
	Emotions          []string `json:"emociones"`
	Interests         []string `json:"intereses"`
	SocialSkills      []string `json:"habilidades_sociales"`
	RiskFactors       []string `json:"factores_riesgo"`
	ProtectiveFactors []string `json:"factores_protectores"`
}

// Result is the structured classification of a finalized conversation.
// Immutable once embedded into a case.
type Result struct {
	Typology        string         `json:"typology"`
	Risk            protocol.Risk  `json:"risk"`
	Summary         string         `json:"summary"`
	Recommendations []string       `json:"recommendations"`
	Psychographics  Psychographics `json:"psychographics"`
	Fallback        bool           `json:"-"`
}

var classifierLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "cuentame",
		Subsystem: "classifier",
		Name:      "latency_seconds",
		Help:      "Latency of LLM classification calls",
		Buckets:   prometheus.DefBuckets,
	}, []string{"model", "status"},
)

var classifierTokensTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cuentame",
		Subsystem: "classifier",
		Name:      "tokens_total",
		Help:      "LLM tokens consumed by classification",
	}, []string{"model", "kind"},
)

var classifierFallbackTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cuentame",
		Subsystem: "classifier",
		Name:      "fallback_total",
		Help:      "Classifications resolved by the safe default",
	}, []string{"reason"},
)

func init() {
	prometheus.MustRegister(classifierLatency)
	prometheus.MustRegister(classifierTokensTotal)
	prometheus.MustRegister(classifierFallbackTotal)
}

// Service obtains a structured risk classification for a conversation
// transcript. Classify never returns an error: any failure resolves to
// the fixed fallback result so finalization is never blocked.
type Service struct {
	client  LLMClient
	model   string
	timeout time.Duration
	logger  *logging.Logger
}

func NewService(client LLMClient, model string, timeout time.Duration, logger *logging.Logger) *Service {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// FallbackResult is the safe default applied whenever the external
// classifier is unreachable or returns an invalid payload.
func FallbackResult() Result {
	return Result{
		Typology:        TypologyFallback,
		Risk:            protocol.RiskMedium,
		Summary:         "Clasificación automática no disponible. Se requiere revisión manual del DECE.",
		Recommendations: []string{"Entrevista DECE"},
		Fallback:        true,
	}
}

const systemPrompt = `Eres el clasificador de casos de CUÉNTAME, la plataforma de reporte de conflictos escolares del Ecuador. Analiza la conversación completa entre la persona reportante y el asistente.

IMPORTANTE: Responde ÚNICAMENTE con un objeto JSON, sin markdown, sin explicación.

Formato exacto:
{"tipologia": "...", "nivel_riesgo": "...", "resumen": "...", "recomendaciones": ["..."], "psicografia": {"emociones": [], "intereses": [], "habilidades_sociales": [], "factores_riesgo": [], "factores_protectores": []}}

Reglas:
- "tipologia" debe ser EXACTAMENTE una de: %s
- "nivel_riesgo" debe ser una de: BAJO, MEDIO, ALTO, CRÍTICO
- "resumen": máximo 3 frases, objetivo y sin datos identificatorios
- "recomendaciones": acciones concretas para el DECE, ordenadas por prioridad
- "psicografia": listas de rasgos observados en el relato; listas vacías si no hay evidencia
- Ante ideación suicida o autolesiones usa siempre nivel_riesgo CRÍTICO`

// wire mirrors the JSON shape requested from the LLM.
type wire struct {
	Tipologia       string   `json:"tipologia"`
	NivelRiesgo     string   `json:"nivel_riesgo"`
	Resumen         string   `json:"resumen"`
	Recomendaciones []string `json:"recomendaciones"`
	Psicografia     struct {
		Emociones           []string `json:"emociones"`
		Intereses           []string `json:"intereses"`
		HabilidadesSociales []string `json:"habilidades_sociales"`
		FactoresRiesgo      []string `json:"factores_riesgo"`
		FactoresProtectores []string `json:"factores_protectores"`
	} `json:"psicografia"`
}

// Classify sends the full transcript to the LLM and returns the parsed
// classification, or the fallback on any failure.
func (s *Service) Classify(ctx context.Context, transcript []Turn) Result {
	if s.client == nil {
		classifierFallbackTotal.WithLabelValues("no_client").Inc()
		return FallbackResult()
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := fmt.Sprintf(systemPrompt, strings.Join(Typologies, ", "))

	start := time.Now()
	resp, err := s.client.Complete(callCtx, LLMRequest{
		Model:  s.model,
		System: []string{prompt},
		Messages: []ChatMessage{
			{Role: ChatRoleUser, Content: "Conversación:\n" + renderTranscript(transcript)},
		},
		MaxTokens:   1024,
		Temperature: 0,
	})
	latency := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	classifierLatency.WithLabelValues(s.model, status).Observe(latency.Seconds())
	if resp.Usage.InputTokens > 0 {
		classifierTokensTotal.WithLabelValues(s.model, "input").Add(float64(resp.Usage.InputTokens))
	}
	if resp.Usage.OutputTokens > 0 {
		classifierTokensTotal.WithLabelValues(s.model, "output").Add(float64(resp.Usage.OutputTokens))
	}

	if err != nil {
		s.logger.Warn("classifier: LLM call failed, applying fallback", "error", err, "model", s.model)
		classifierFallbackTotal.WithLabelValues("llm_error").Inc()
		return FallbackResult()
	}

	result, perr := parseResult(resp.Text)
	if perr != nil {
		s.logger.Warn("classifier: invalid LLM payload, applying fallback",
			"error", perr,
			"model", s.model,
			"raw_preview", preview(resp.Text, 120),
		)
		classifierFallbackTotal.WithLabelValues("invalid_payload").Inc()
		return FallbackResult()
	}

	s.logger.Info("classifier: conversation classified",
		"model", s.model,
		"typology", result.Typology,
		"risk", result.Risk,
		"latency_ms", latency.Milliseconds(),
	)
	return result
}

// parseResult tolerates markdown code fences around the JSON payload and
// validates the enumerated fields strictly. Partial data is never
// trusted: a schema violation fails the whole parse.
func parseResult(raw string) (Result, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	jsonText := raw
	if !strings.HasPrefix(jsonText, "{") {
		start := strings.Index(jsonText, "{")
		end := strings.LastIndex(jsonText, "}")
		if start >= 0 && end > start {
			jsonText = jsonText[start : end+1]
		}
	}

	var w wire
	if err := json.Unmarshal([]byte(jsonText), &w); err != nil {
		return Result{}, fmt.Errorf("classifier: parse response: %w", err)
	}

	typology := strings.TrimSpace(w.Tipologia)
	if _, ok := knownTypologies[typology]; !ok {
		return Result{}, fmt.Errorf("classifier: unknown typology %q", typology)
	}

	risk := protocol.ParseRisk(w.NivelRiesgo)
	switch risk {
	case protocol.RiskLow, protocol.RiskMedium, protocol.RiskHigh, protocol.RiskCritical:
	default:
		return Result{}, fmt.Errorf("classifier: unknown risk level %q", w.NivelRiesgo)
	}

	return Result{
		Typology:        typology,
		Risk:            risk,
		Summary:         strings.TrimSpace(w.Resumen),
		Recommendations: w.Recomendaciones,
		Psychographics: Psychographics{
			Emotions:          w.Psicografia.Emociones,
			Interests:         w.Psicografia.Intereses,
			SocialSkills:      w.Psicografia.HabilidadesSociales,
			RiskFactors:       w.Psicografia.FactoresRiesgo,
			ProtectiveFactors: w.Psicografia.FactoresProtectores,
		},
	}, nil
}

func renderTranscript(transcript []Turn) string {
	var builder strings.Builder
	for _, turn := range transcript {
		builder.WriteString(turn.Sender)
		builder.WriteString(": ")
		builder.WriteString(turn.Text)
		builder.WriteString("\n")
	}
	return builder.String()
}

func preview(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
