package main

// Exercise the extraction pipeline against a local file without the HTTP
// layer:
//   go run ./cmd/prompttest -file contract.pdf -instructions "List the obligations"
// Pass -generate to send the assembled prompt to the configured Ollama
// server and print the analysis.

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docmind-backend/internal/chunk"
	"docmind-backend/internal/extract"
	"docmind-backend/internal/llm"
	"docmind-backend/internal/llm/ollama"
	"docmind-backend/internal/prompt"
	"docmind-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	filePath := flag.String("file", "", "Path to the document to analyze")
	instructions := flag.String("instructions", "Summarize this document", "What to analyze or extract")
	model := flag.String("model", cfg.LLMModel, "Model id to use")
	generate := flag.Bool("generate", false, "Send the prompt to the inference server instead of printing it")
	outPath := flag.String("out", "", "Path to write the output (optional)")
	flag.Parse()

	if strings.TrimSpace(*filePath) == "" {
		exitErr("file path is required")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		exitErr(fmt.Sprintf("read file: %v", err))
	}
	fileName := filepath.Base(*filePath)

	extractor := extract.New(cfg.ExtractFormats...)
	text, err := extractor.Text(data, fileName)
	if err != nil {
		exitErr(fmt.Sprintf("extract text: %v", err))
	}

	chunks, err := chunk.Split(text, cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		exitErr(fmt.Sprintf("chunk text: %v", err))
	}
	fmt.Fprintf(os.Stderr, "extracted %d runes into %d chunk(s)\n", len([]rune(text)), len(chunks))

	p := prompt.Build(*instructions, fileName, chunks, cfg.PromptMaxChars)

	output := p
	if *generate {
		client := ollama.NewClient(cfg.OllamaURL, time.Duration(cfg.LLMTimeoutSeconds)*time.Second)
		analysis, err := client.Generate(context.Background(), llm.GenerateInput{Model: *model, Prompt: p})
		if err != nil {
			exitErr(fmt.Sprintf("generate: %v", err))
		}
		output = analysis
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(output), 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}

	if _, err := os.Stdout.WriteString(output); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
	if len(output) == 0 || output[len(output)-1] != '\n' {
		_, _ = os.Stdout.Write([]byte("\n"))
	}
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
