package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the dashboard service
type Config struct {
	// Server configuration
	Port string `env:"PORT,default=8981"`

	// Descriptor sources
	DashboardsDir string `env:"DASHBOARDS_DIR,default=./dashboards"`
	Watch         bool   `env:"WATCH,default=true"`

	// Page layout
	MountSelector string `env:"MOUNT_SELECTOR,default=#dashboards"`
	PageTitle     string `env:"PAGE_TITLE,default=Dashboards"`
	HostTemplate  string `env:"HOST_TEMPLATE"`

	// Browser-side libraries
	EChartsURL       string `env:"ECHARTS_URL,default=https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/echarts.min.js"`
	JQueryURL        string `env:"JQUERY_URL,default=https://code.jquery.com/jquery-3.7.1.min.js"`
	DataTablesJSURL  string `env:"DATATABLES_JS_URL,default=https://cdn.datatables.net/1.13.8/js/jquery.dataTables.min.js"`
	DataTablesCSSURL string `env:"DATATABLES_CSS_URL,default=https://cdn.datatables.net/1.13.8/css/jquery.dataTables.min.css"`

	// Fixed body height of dataset grids
	GridScrollHeight string `env:"GRID_SCROLL_HEIGHT,default=300px"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=json"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}
