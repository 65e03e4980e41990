// Package config loads the dashboard configuration.
//
// # Sources
//
// Configuration is layered, later sources winning:
//
//	1. Default() values
//	2. YAML file (explicit path, or config.yaml / configs/config.yaml)
//	3. BEDEP_* environment variables via envconfig
//
// For example:
//
//	BEDEP_SERVER_PORT=8050
//	BEDEP_DATASET_PATH=data/AI_Rapor.xlsx
//	BEDEP_DATASET_SHEET=Sayfa1
//	BEDEP_DASHBOARD_DEFAULT_AREA=reading
//	BEDEP_TELEMETRY_METRIC_EXPORTER=prometheus
//
// The result is checked with validator struct tags before use. Dataset
// column headers default to the Turkish headers of the BEDEP report export.
package config
