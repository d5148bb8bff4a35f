package config

// Config holds formscan configuration.
// Stored at: {home}/config.yaml
type Config struct {
	// Provider selects the extraction provider: "azure" or "openai".
	Provider string `mapstructure:"provider" yaml:"provider"`

	// SettingsFile overrides the path to the env-style settings file
	// written by `formscan provision`. Empty uses {home}/azure.env.
	SettingsFile string `mapstructure:"settings_file" yaml:"settings_file"`

	// SchemaFile overrides the extraction schema sent in the prompt.
	// Empty uses the embedded default schema.
	SchemaFile string `mapstructure:"schema_file" yaml:"schema_file"`

	Azure     AzureCfg     `mapstructure:"azure" yaml:"azure"`
	OpenAI    OpenAICfg    `mapstructure:"openai" yaml:"openai"`
	Provision ProvisionCfg `mapstructure:"provision" yaml:"provision"`
}

// AzureCfg configures the Azure OpenAI extraction provider. Endpoint,
// api_key and deployment are normally read from the settings file; values
// set here take precedence.
type AzureCfg struct {
	Endpoint       string `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	Deployment     string `mapstructure:"deployment" yaml:"deployment"`
	APIVersion     string `mapstructure:"api_version" yaml:"api_version"`
	MaxTokens      int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// OpenAICfg configures the OpenAI-compatible extraction provider.
type OpenAICfg struct {
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	Model          string `mapstructure:"model" yaml:"model"`
	MaxTokens      int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// ProvisionCfg configures the infrastructure deployment run by
// `formscan provision`.
type ProvisionCfg struct {
	Region         string `mapstructure:"region" yaml:"region"`
	ResourceGroup  string `mapstructure:"resource_group" yaml:"resource_group"`
	AccountName    string `mapstructure:"account_name" yaml:"account_name"`
	DeploymentName string `mapstructure:"deployment_name" yaml:"deployment_name"`
	ModelName      string `mapstructure:"model_name" yaml:"model_name"`
	ModelVersion   string `mapstructure:"model_version" yaml:"model_version"`
	SKU            string `mapstructure:"sku" yaml:"sku"`
	Capacity       int    `mapstructure:"capacity" yaml:"capacity"`
	TemplateFile   string `mapstructure:"template_file" yaml:"template_file"`
	ParametersFile string `mapstructure:"parameters_file" yaml:"parameters_file"`
}
