// Package extract runs a single extraction: composite image in, extracted
// JSON text out. Connection settings are injected as explicit configuration
// objects; nothing here reads process-wide environment state.
package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jackzampolin/formscan/internal/config"
	"github.com/jackzampolin/formscan/internal/envfile"
	"github.com/jackzampolin/formscan/internal/prompts"
	"github.com/jackzampolin/formscan/internal/provision"
	"github.com/jackzampolin/formscan/internal/providers"
)

// Request contains the parameters for one extraction run.
type Request struct {
	ImagePath  string
	SchemaPath string // empty uses the embedded default schema
	Provider   providers.ExtractionProvider
	Logger     *slog.Logger // optional
	Out        io.Writer    // extracted content on success; default os.Stdout
	ErrOut     io.Writer    // failure indication; default os.Stderr
}

// Run reads the composite image, builds the prompt, performs the request
// and prints the first choice's content verbatim. On failure a distinct
// failure indication is printed to ErrOut and the error returned; nothing
// panics on a malformed or unsuccessful response.
func Run(ctx context.Context, req Request) (*providers.ExtractResult, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}
	out := req.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := req.ErrOut
	if errOut == nil {
		errOut = os.Stderr
	}

	image, err := os.ReadFile(req.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read composite image: %w", err)
	}

	schema, err := prompts.LoadSchema(req.SchemaPath)
	if err != nil {
		return nil, err
	}
	prompt, err := prompts.Build(schema)
	if err != nil {
		return nil, err
	}

	log.Info("submitting extraction request",
		"provider", req.Provider.Name(),
		"image", req.ImagePath,
		"image_bytes", len(image),
	)

	start := time.Now()
	result, err := req.Provider.Extract(ctx, image, prompt)
	if err != nil {
		fmt.Fprintf(errOut, "extraction failed: %v\n", err)
		return result, err
	}

	log.Info("extraction complete",
		"provider", result.Provider,
		"model", result.ModelUsed,
		"total_tokens", result.TotalTokens,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	fmt.Fprintln(out, result.Content)
	return result, nil
}

// BuildProvider resolves the configured extraction provider through a
// registry lookup. For the Azure provider, connection settings come from
// the settings file written by `formscan provision`, with non-empty config
// values taking precedence.
func BuildProvider(cfg *config.Config, settingsPath string) (providers.ExtractionProvider, error) {
	registry, err := BuildRegistry(cfg, settingsPath)
	if err != nil {
		return nil, err
	}
	return registry.Get(cfg.Provider)
}

// BuildRegistry registers every provider the configuration can support.
// A provider that cannot be constructed is skipped unless it is the
// selected one, in which case its construction error is returned so the
// caller sees what is missing rather than a bare lookup miss.
func BuildRegistry(cfg *config.Config, settingsPath string) (*providers.Registry, error) {
	registry := providers.NewRegistry()

	azure, azureErr := buildAzure(cfg, settingsPath)
	if azureErr == nil {
		registry.Register(providers.AzureProviderName, azure)
	}
	openAI, openAIErr := buildOpenAI(cfg)
	if openAIErr == nil {
		registry.Register(providers.OpenAIProviderName, openAI)
	}

	switch cfg.Provider {
	case providers.AzureProviderName:
		if azureErr != nil {
			return nil, azureErr
		}
	case providers.OpenAIProviderName:
		if openAIErr != nil {
			return nil, openAIErr
		}
	}

	return registry, nil
}

func buildAzure(cfg *config.Config, settingsPath string) (*providers.AzureClient, error) {
	azure := cfg.ResolvedAzure()

	settings, err := envfile.Read(settingsPath)
	if err != nil {
		return nil, err
	}
	if azure.Endpoint == "" {
		azure.Endpoint = settings[provision.KeyEndpoint]
	}
	if azure.APIKey == "" {
		azure.APIKey = settings[provision.KeyAPIKey]
	}
	if azure.Deployment == "" {
		azure.Deployment = settings[provision.KeyDeployment]
	}
	if v := settings[provision.KeyAPIVersion]; v != "" && cfg.Azure.APIVersion == "" {
		azure.APIVersion = v
	}

	if azure.Endpoint == "" || azure.APIKey == "" || azure.Deployment == "" {
		return nil, fmt.Errorf("incomplete azure settings: run 'formscan provision' or fill in config (endpoint=%t api_key=%t deployment=%t)",
			azure.Endpoint != "", azure.APIKey != "", azure.Deployment != "")
	}

	return providers.NewAzureClient(providers.AzureConfig{
		Endpoint:   azure.Endpoint,
		APIKey:     azure.APIKey,
		Deployment: azure.Deployment,
		APIVersion: azure.APIVersion,
		MaxTokens:  azure.MaxTokens,
		Timeout:    time.Duration(azure.TimeoutSeconds) * time.Second,
	}), nil
}

func buildOpenAI(cfg *config.Config) (*providers.OpenAIClient, error) {
	openAI := cfg.ResolvedOpenAI()
	if openAI.APIKey == "" {
		return nil, fmt.Errorf("openai provider requires an api_key")
	}
	return providers.NewOpenAIClient(providers.OpenAIConfig{
		APIKey:    openAI.APIKey,
		BaseURL:   openAI.BaseURL,
		Model:     openAI.Model,
		MaxTokens: openAI.MaxTokens,
		Timeout:   time.Duration(openAI.TimeoutSeconds) * time.Second,
	}), nil
}
