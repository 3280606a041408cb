// Command llmtest sends a sample intake conversation through the
// configured LLM providers so operators can verify credentials before
// deploying. It prints the raw completion and the parsed classification.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/cuentame-ec/cuentame/cmd/mainconfig"
	"github.com/cuentame-ec/cuentame/internal/app/bootstrap"
	"github.com/cuentame-ec/cuentame/internal/classifier"
	appconfig "github.com/cuentame-ec/cuentame/internal/config"
	"github.com/cuentame-ec/cuentame/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}

	client := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, logger)
	if client == nil {
		fmt.Println("No LLM provider configured (set GEMINI_API_KEY and/or BEDROCK_MODEL_ID).")
		fmt.Println("Classification would resolve to the safe fallback.")
		os.Exit(1)
	}

	transcript := []classifier.Turn{
		{Sender: classifier.SenderAssistant, Text: "Hola, soy el asistente de CUÉNTAME. Cuéntame qué pasó."},
		{Sender: classifier.SenderReporter, Text: "Unos compañeros de mi curso me quitan la mochila todos los días y me empujan en el recreo."},
		{Sender: classifier.SenderAssistant, Text: "Lamento que estés pasando por eso. ¿Desde cuándo sucede?"},
		{Sender: classifier.SenderReporter, Text: "Desde hace como dos meses. Ya no quiero ir al colegio."},
	}

	model := cfg.BedrockModelID
	if model == "" {
		model = cfg.GeminiModelID
	}
	svc := classifier.NewService(client, model, cfg.ClassifierTimeout, logger)

	fmt.Println("Classifying sample transcript...")
	start := time.Now()
	result := svc.Classify(ctx, transcript)
	elapsed := time.Since(start).Round(time.Millisecond)

	fmt.Printf("\nElapsed:         %s\n", elapsed)
	fmt.Printf("Typology:        %s\n", result.Typology)
	fmt.Printf("Risk:            %s (%s)\n", result.Risk, result.Risk.DisplayES())
	fmt.Printf("Summary:         %s\n", result.Summary)
	fmt.Printf("Recommendations: %v\n", result.Recommendations)
	fmt.Printf("Fallback used:   %v\n", result.Fallback)

	if result.Fallback {
		fmt.Println("\nThe provider call failed; check credentials and model ids.")
		os.Exit(1)
	}
}
