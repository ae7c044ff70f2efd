package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/downfa11-org/logsnap/util"
	"gopkg.in/yaml.v3"
)

// TopicConfig describes one topic snapshot request.
type TopicConfig struct {
	Name         string `yaml:"name" json:"name"`
	Compacting   bool   `yaml:"compacting" json:"compacting"`
	KeyKind      string `yaml:"key_kind" json:"key.kind"`
	FilterKind   string `yaml:"filter_kind" json:"filter.kind"`
	FilterSample string `yaml:"filter_sample" json:"filter.sample"`
	StartOffset  int64  `yaml:"start_offset" json:"start.offset"`
	StartDate    string `yaml:"start_date" json:"start.date"` // RFC3339
	Raw          bool   `yaml:"raw" json:"raw"`
	Output       string `yaml:"output" json:"output"` // defaults to Name
}

// StartTime parses the optional start date.
func (tc TopicConfig) StartTime() (time.Time, bool, error) {
	if strings.TrimSpace(tc.StartDate) == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, tc.StartDate)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("start_date %q: %w", tc.StartDate, err)
	}
	return t, true, nil
}

// S3Config holds optional object-store upload settings. Upload is
// enabled when EndpointURL and Bucket are both set.
type S3Config struct {
	EndpointURL     string `yaml:"endpoint_url" json:"endpoint.url"`
	AccessKeyID     string `yaml:"access_key_id" json:"access.key.id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret.access.key"`
	Bucket          string `yaml:"bucket" json:"bucket"`
	BasePrefix      string `yaml:"base_prefix" json:"base.prefix"`
	Region          string `yaml:"region" json:"region"`
	UseSSL          bool   `yaml:"use_ssl" json:"use.ssl"`
}

func (s S3Config) Enabled() bool {
	return s.EndpointURL != "" && s.Bucket != ""
}

// Config represents the snapshot run configuration.
type Config struct {
	Brokers []string      `yaml:"brokers" json:"brokers"`
	Topics  []TopicConfig `yaml:"topics" json:"topics"`

	// Export settings
	OutputDir   string   `yaml:"output_dir" json:"output.dir"`
	Format      string   `yaml:"format" json:"format"`           // jsonl or parquet
	Compression string   `yaml:"compression" json:"compression"` // none, gzip, snappy, lz4 (jsonl only)
	S3          S3Config `yaml:"s3" json:"s3"`

	// Metadata/offset query bound
	MetadataTimeoutMS int `yaml:"metadata_timeout_ms" json:"metadata.timeout.ms"`

	// Observability
	LogLevel       util.LogLevel `yaml:"log_level" json:"log_level"`
	EnableExporter bool          `yaml:"enable_exporter" json:"enable.exporter"`
	ExporterPort   int           `yaml:"exporter_port" json:"exporter.port"`
}

// MetadataTimeout returns the query bound as a duration.
func (cfg *Config) MetadataTimeout() time.Duration {
	return time.Duration(cfg.MetadataTimeoutMS) * time.Millisecond
}

// LoadConfig resolves the configuration from flags, an optional
// YAML/JSON file and environment variables, in that order of
// precedence (env highest, matching the broker's properties layer).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("logsnap", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to YAML/JSON config file")
	brokersStr := fs.String("brokers", "", "Comma-separated broker addresses")
	topicStr := fs.String("topic", "", "Topic to snapshot (single-topic mode)")
	compactingStr := fs.String("compacting", "false", "Compact to latest value per key")
	keyKindStr := fs.String("key-kind", "string", "Key representation (string, long, bytes)")
	filterKindStr := fs.String("filter-kind", "none", "Key filter (none, key-equals)")
	filterSampleStr := fs.String("filter-sample", "", "Sample value for key-equals filter")
	startOffsetStr := fs.String("start-offset", "-1", "Start offset override (-1 = earliest)")
	startDateStr := fs.String("start-date", "", "Start date override (RFC3339)")
	rawStr := fs.String("raw", "false", "Export raw message values only")
	outputDirStr := fs.String("output-dir", "snapshots", "Directory for snapshot files")
	formatStr := fs.String("format", "jsonl", "Export format (jsonl, parquet)")
	compressionStr := fs.String("compression", "none", "JSONL compression (none, gzip, snappy, lz4)")
	metadataTimeoutStr := fs.String("metadata-timeout", "10000", "Metadata/offset query timeout (ms)")
	exporterStr := fs.String("exporter", "false", "Enable Prometheus exporter")
	exporterPortStr := fs.String("exporter-port", "9100", "Exporter port")
	logLevelStr := fs.String("log-level", "info", "Log Level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" && *configPath == "" {
		*configPath = envPath
	}

	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return nil, err
		}
		if strings.HasSuffix(*configPath, ".json") {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	if *brokersStr != "" {
		cfg.Brokers = splitList(*brokersStr)
	}
	if *topicStr != "" {
		cfg.Topics = append(cfg.Topics, TopicConfig{
			Name:         *topicStr,
			Compacting:   util.ParseBool(*compactingStr, false),
			KeyKind:      *keyKindStr,
			FilterKind:   *filterKindStr,
			FilterSample: *filterSampleStr,
			StartOffset:  util.ParseInt64(*startOffsetStr, -1),
			StartDate:    *startDateStr,
			Raw:          util.ParseBool(*rawStr, false),
		})
	}
	if *outputDirStr != "snapshots" || cfg.OutputDir == "" {
		cfg.OutputDir = *outputDirStr
	}
	if *formatStr != "jsonl" || cfg.Format == "" {
		cfg.Format = *formatStr
	}
	if *compressionStr != "none" || cfg.Compression == "" {
		cfg.Compression = *compressionStr
	}
	if *metadataTimeoutStr != "10000" || cfg.MetadataTimeoutMS == 0 {
		cfg.MetadataTimeoutMS = util.ParseInt(*metadataTimeoutStr, 10000)
	}
	if util.ParseBool(*exporterStr, false) {
		cfg.EnableExporter = true
	}
	if *exporterPortStr != "9100" || cfg.ExporterPort == 0 {
		cfg.ExporterPort = util.ParseInt(*exporterPortStr, 9100)
	}
	if *logLevelStr != "info" {
		cfg.LogLevel = parseLogLevel(*logLevelStr)
	} else if *configPath == "" {
		cfg.LogLevel = util.LogLevelInfo
	}

	applyEnv(cfg)
	cfg.Normalize()
	util.SetLevel(cfg.LogLevel)

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no brokers configured")
	}
	if len(cfg.Topics) == 0 {
		return nil, fmt.Errorf("no topics configured")
	}
	return cfg, nil
}
