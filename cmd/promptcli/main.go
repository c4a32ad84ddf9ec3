package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"homophily-study/internal/config"
	"homophily-study/internal/domain"
	"homophily-study/internal/llm"
	"homophily-study/internal/service"
)

// Herramienta de inspeccion de prompts: renderiza la instruccion de sistema
// de cualquier persona/tema y, con --call, abre un chat en vivo contra el
// modelo configurado para probar la persona antes de correr el estudio.
func main() {
	topicFlag := flag.String("topic", "A", "topic to debate: A or B")
	personaFlag := flag.String("persona", "default", "persona label: default, high_match, low_match, or a centroid label (A, C, O)")
	callFlag := flag.Bool("call", false, "open an interactive chat against the configured model")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	experiment, err := config.LoadExperiment(cfg.ExperimentFile)
	if err != nil {
		log.Fatal(err)
	}

	topic := experiment.TopicA
	if strings.EqualFold(*topicFlag, "B") {
		topic = experiment.TopicB
	}

	prompts := service.PromptBuilder{
		Turns:     experiment.MessagesPerBot,
		Centroids: experiment.Centroids,
	}
	systemPrompt := prompts.SystemPrompt(*personaFlag, topic.Title)

	fmt.Printf("===== Persona: %s | Tema: %s =====\n\n", *personaFlag, topic.Short)
	fmt.Println(systemPrompt)

	if !*callFlag {
		return
	}

	logger := zap.NewExample()
	defer logger.Sync()

	if cfg.LLMAPIKey == "" {
		log.Fatal("LLM_API_KEY no configurada; no se puede abrir el chat en vivo")
	}
	client := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTemperature, cfg.LLMMaxTokens, logger)

	runChat(context.Background(), client, systemPrompt)
}

func runChat(ctx context.Context, client llm.LLMClient, systemPrompt string) {
	reader := bufio.NewReader(os.Stdin)
	var history []domain.ChatTurn

	fmt.Println("\n---- Modo Chat (escribe 'salir' para terminar) ----")
	for {
		fmt.Print("Tu > ")
		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "salir") || strings.EqualFold(text, "exit") {
			fmt.Println("Saliendo del chat...")
			return
		}

		history = append(history, domain.ChatTurn{Role: domain.RoleUser, Content: text})
		response, err := client.Complete(ctx, systemPrompt, history)
		if err != nil {
			fmt.Printf("error generando respuesta: %v\n", err)
			history = history[:len(history)-1]
			continue
		}
		history = append(history, domain.ChatTurn{Role: domain.RoleAssistant, Content: response})
		fmt.Printf("Bot > %s\n", response)
	}
}
