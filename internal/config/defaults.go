package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/jackzampolin/formscan/internal/providers"
)

// DefaultConfig returns the default formscan configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: providers.AzureProviderName,
		Azure: AzureCfg{
			APIKey:         "${AZURE_OPENAI_API_KEY}",
			APIVersion:     providers.AzureDefaultAPIVersion,
			MaxTokens:      4096,
			TimeoutSeconds: 120,
		},
		OpenAI: OpenAICfg{
			APIKey:         "${OPENAI_API_KEY}",
			Model:          "gpt-4o",
			MaxTokens:      4096,
			TimeoutSeconds: 120,
		},
		Provision: ProvisionCfg{
			Region:         "eastus",
			ResourceGroup:  "rg-formscan",
			AccountName:    "", // generated with a unique suffix when empty
			DeploymentName: "gpt-4o",
			ModelName:      "gpt-4o",
			ModelVersion:   "2024-08-06",
			SKU:            "S0",
			Capacity:       10,
			TemplateFile:   "deploy/main.bicep",
			ParametersFile: "deploy/parameters.json",
		},
	}
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# formscan configuration
# API keys use ${ENV_VAR} syntax to reference environment variables.
# Connection settings written by 'formscan provision' live in azure.env
# next to this file and take effect without editing this config.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
