// Package provision deploys the Azure resources formscan needs: a resource
// group, an Azure OpenAI account, and one vision model deployment. The
// heavy lifting is declarative (deploy/main.bicep executed by the az CLI);
// this package is the glue that runs the tool, waits for the account to
// converge, and persists connection settings.
//
// There is no rollback. A failed deployment leaves partial state behind for
// the operator to re-run or remove.
package provision

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/jackzampolin/formscan/internal/config"
	"github.com/jackzampolin/formscan/internal/envfile"
	"github.com/jackzampolin/formscan/internal/providers"
)

// Settings file keys written after a successful deployment.
const (
	KeyResourceGroup = "AZURE_RESOURCE_GROUP_NAME"
	KeyEndpoint      = "AZURE_OPENAI_ENDPOINT"
	KeyAPIKey        = "AZURE_OPENAI_API_KEY"
	KeyDeployment    = "AZURE_OPENAI_VISION_MODEL_DEPLOYMENT_NAME"
	KeyAPIVersion    = "AZURE_OPENAI_API_VERSION"
)

// provisioningTimeout bounds how long we wait for the account to converge.
const provisioningTimeout = 5 * time.Minute

// Runner executes the external deployment tool. The default implementation
// shells out to the az CLI; tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// AzRunner runs the az CLI.
type AzRunner struct{}

// Run executes `az` with the given arguments and returns stdout.
func (AzRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "az", args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("az %s failed: %w (stderr: %s)",
				args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("az %s failed: %w", args[0], err)
	}
	return output, nil
}

// Request contains the parameters for a provisioning run.
type Request struct {
	Cfg          config.ProvisionCfg
	SettingsPath string       // env-style settings file to write
	Runner       Runner       // optional, defaults to the az CLI
	Logger       *slog.Logger // optional logger for progress updates
}

// Result contains the connection settings of a successful deployment.
type Result struct {
	ResourceGroup string `json:"resource_group"`
	AccountName   string `json:"account_name"`
	Endpoint      string `json:"endpoint"`
	Deployment    string `json:"deployment"`
	APIVersion    string `json:"api_version"`
	SettingsPath  string `json:"settings_path"`
}

// Provision deploys the resource group, account and model deployment, then
// writes connection settings to the settings file. Existing unrelated keys
// in the settings file are preserved.
func Provision(ctx context.Context, req Request) (*Result, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}
	runner := req.Runner
	if runner == nil {
		runner = AzRunner{}
	}

	cfg := req.Cfg
	if cfg.AccountName == "" {
		cfg.AccountName = "formscan-" + uuid.New().String()[:8]
	}

	log.Info("creating resource group", "name", cfg.ResourceGroup, "region", cfg.Region)
	if _, err := runner.Run(ctx,
		"group", "create",
		"--name", cfg.ResourceGroup,
		"--location", cfg.Region,
		"-o", "json",
	); err != nil {
		return nil, fmt.Errorf("failed to create resource group: %w", err)
	}

	log.Info("deploying template", "template", cfg.TemplateFile, "account", cfg.AccountName)
	deployOut, err := runner.Run(ctx,
		"deployment", "group", "create",
		"--resource-group", cfg.ResourceGroup,
		"--template-file", cfg.TemplateFile,
		"--parameters", "@"+cfg.ParametersFile,
		"--parameters",
		"accountName="+cfg.AccountName,
		"deploymentName="+cfg.DeploymentName,
		"modelName="+cfg.ModelName,
		"modelVersion="+cfg.ModelVersion,
		"skuName="+cfg.SKU,
		"skuCapacity="+strconv.Itoa(cfg.Capacity),
		"-o", "json",
	)
	if err != nil {
		return nil, fmt.Errorf("template deployment failed: %w", err)
	}

	outputs := gjson.GetBytes(deployOut, "properties.outputs")
	endpoint := outputs.Get("endpoint.value").String()
	deployment := outputs.Get("deploymentName.value").String()
	if deployment == "" {
		deployment = cfg.DeploymentName
	}
	if endpoint == "" {
		return nil, fmt.Errorf("deployment output missing endpoint (outputs: %s)", outputs.Raw)
	}

	if err := waitForAccount(ctx, runner, cfg, log); err != nil {
		return nil, err
	}

	log.Debug("fetching account key", "account", cfg.AccountName)
	keysOut, err := runner.Run(ctx,
		"cognitiveservices", "account", "keys", "list",
		"--name", cfg.AccountName,
		"--resource-group", cfg.ResourceGroup,
		"-o", "json",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list account keys: %w", err)
	}
	apiKey := gjson.GetBytes(keysOut, "key1").String()
	if apiKey == "" {
		return nil, fmt.Errorf("account keys response missing key1")
	}

	settings := map[string]string{
		KeyResourceGroup: cfg.ResourceGroup,
		KeyEndpoint:      endpoint,
		KeyAPIKey:        apiKey,
		KeyDeployment:    deployment,
		KeyAPIVersion:    providers.AzureDefaultAPIVersion,
	}
	if err := envfile.Set(req.SettingsPath, settings); err != nil {
		return nil, fmt.Errorf("failed to persist settings: %w", err)
	}

	log.Info("provisioning complete",
		"resource_group", cfg.ResourceGroup,
		"account", cfg.AccountName,
		"deployment", deployment,
		"settings", req.SettingsPath,
	)

	return &Result{
		ResourceGroup: cfg.ResourceGroup,
		AccountName:   cfg.AccountName,
		Endpoint:      endpoint,
		Deployment:    deployment,
		APIVersion:    providers.AzureDefaultAPIVersion,
		SettingsPath:  req.SettingsPath,
	}, nil
}

// waitForAccount polls the account provisioning state until Succeeded.
func waitForAccount(ctx context.Context, runner Runner, cfg config.ProvisionCfg, log *slog.Logger) error {
	return retry.Do(
		func() error {
			out, err := runner.Run(ctx,
				"cognitiveservices", "account", "show",
				"--name", cfg.AccountName,
				"--resource-group", cfg.ResourceGroup,
				"-o", "json",
			)
			if err != nil {
				return err
			}
			state := gjson.GetBytes(out, "properties.provisioningState").String()
			if state != "Succeeded" {
				log.Debug("waiting for account", "state", state)
				return fmt.Errorf("account not ready: %s", state)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(provisioningTimeout/(5*time.Second))),
		retry.Delay(5*time.Second),
		retry.DelayType(retry.FixedDelay),
	)
}
