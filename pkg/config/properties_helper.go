package config

import (
	"os"
	"strings"

	"github.com/downfa11-org/logsnap/util"
)

// Normalize fills in defaults for anything the flags, file and
// environment left unset or invalid.
func (cfg *Config) Normalize() {
	if strings.TrimSpace(cfg.OutputDir) == "" {
		cfg.OutputDir = "snapshots"
	}

	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	switch cfg.Format {
	case "jsonl", "parquet":
	case "":
		cfg.Format = "jsonl"
	default:
		util.Warn("Invalid format '%s', defaulting to 'jsonl'", cfg.Format)
		cfg.Format = "jsonl"
	}

	cfg.Compression = strings.ToLower(strings.TrimSpace(cfg.Compression))
	switch cfg.Compression {
	case "none", "gzip", "snappy", "lz4":
	case "":
		cfg.Compression = "none"
	default:
		util.Warn("Invalid compression '%s', defaulting to 'none'", cfg.Compression)
		cfg.Compression = "none"
	}

	if cfg.MetadataTimeoutMS <= 0 {
		cfg.MetadataTimeoutMS = 10000
	}
	if cfg.ExporterPort <= 0 {
		cfg.ExporterPort = 9100
	}

	for i := range cfg.Topics {
		tc := &cfg.Topics[i]
		if strings.TrimSpace(tc.Output) == "" {
			tc.Output = tc.Name
		}
		if strings.TrimSpace(tc.KeyKind) == "" {
			tc.KeyKind = "string"
		}
		tc.FilterKind = strings.ToLower(strings.TrimSpace(tc.FilterKind))
		switch tc.FilterKind {
		case "none", "key-equals":
		case "":
			tc.FilterKind = "none"
		default:
			util.Warn("Invalid filter_kind '%s' for topic %s, defaulting to 'none'", tc.FilterKind, tc.Name)
			tc.FilterKind = "none"
		}
		if tc.StartOffset < -1 {
			tc.StartOffset = -1
		}
	}
}

func applyEnv(cfg *Config) {
	overrideEnvStringSlice(&cfg.Brokers, "LOGSNAP_BROKERS")
	overrideEnvString(&cfg.OutputDir, "LOGSNAP_OUTPUT_DIR")
	overrideEnvString(&cfg.Format, "LOGSNAP_FORMAT")
	overrideEnvString(&cfg.Compression, "LOGSNAP_COMPRESSION")
	overrideEnvInt(&cfg.MetadataTimeoutMS, "LOGSNAP_METADATA_TIMEOUT_MS")
	overrideEnvBool(&cfg.EnableExporter, "LOGSNAP_EXPORTER")
	overrideEnvInt(&cfg.ExporterPort, "LOGSNAP_EXPORTER_PORT")

	overrideEnvString(&cfg.S3.EndpointURL, "LOGSNAP_S3_ENDPOINT")
	overrideEnvString(&cfg.S3.AccessKeyID, "LOGSNAP_S3_ACCESS_KEY")
	overrideEnvString(&cfg.S3.SecretAccessKey, "LOGSNAP_S3_SECRET_KEY")
	overrideEnvString(&cfg.S3.Bucket, "LOGSNAP_S3_BUCKET")
	overrideEnvString(&cfg.S3.BasePrefix, "LOGSNAP_S3_PREFIX")
	overrideEnvString(&cfg.S3.Region, "LOGSNAP_S3_REGION")
	overrideEnvBool(&cfg.S3.UseSSL, "LOGSNAP_S3_SSL")
}

func parseLogLevel(s string) util.LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return util.LogLevelDebug
	case "info":
		return util.LogLevelInfo
	case "warn", "warning":
		return util.LogLevelWarn
	case "error":
		return util.LogLevelError
	default:
		return util.LogLevelInfo
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func overrideEnvInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		*target = util.ParseInt(v, *target)
	}
}

func overrideEnvBool(target *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*target = util.ParseBool(v, *target)
	}
}

func overrideEnvString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func overrideEnvStringSlice(target *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = splitList(v)
	}
}
