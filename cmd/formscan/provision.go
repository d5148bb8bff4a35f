package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/formscan/internal/output"
	"github.com/jackzampolin/formscan/internal/provision"
)

var (
	provisionRegion        string
	provisionResourceGroup string
	provisionAccountName   string
	provisionDeployment    string
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Deploy the Azure OpenAI account and vision model deployment",
	Long: `Provision deploys a resource group, an Azure OpenAI account, and one
vision model deployment using the az CLI and the bicep template in deploy/.

Connection settings (endpoint, key, deployment name) are written to the
settings file in the formscan home directory. A failed deployment leaves
partial state behind; re-run after fixing the cause or remove the resource
group manually.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, mgr, err := setup()
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		provisionCfg := cfg.Provision
		if provisionRegion != "" {
			provisionCfg.Region = provisionRegion
		}
		if provisionResourceGroup != "" {
			provisionCfg.ResourceGroup = provisionResourceGroup
		}
		if provisionAccountName != "" {
			provisionCfg.AccountName = provisionAccountName
		}
		if provisionDeployment != "" {
			provisionCfg.DeploymentName = provisionDeployment
		}

		result, err := provision.Provision(cmd.Context(), provision.Request{
			Cfg:          provisionCfg,
			SettingsPath: settingsPath(homeDir, cfg),
			Logger:       slog.Default(),
		})
		if err != nil {
			return err
		}

		return output.Print(result)
	},
}

func init() {
	provisionCmd.Flags().StringVar(&provisionRegion, "region", "", "target Azure region (default from config)")
	provisionCmd.Flags().StringVar(&provisionResourceGroup, "resource-group", "", "resource group name (default from config)")
	provisionCmd.Flags().StringVar(&provisionAccountName, "account-name", "", "Azure OpenAI account name (default: generated)")
	provisionCmd.Flags().StringVar(&provisionDeployment, "deployment", "", "model deployment name (default from config)")
}
