package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Upload   UploadConfig   `yaml:"upload"`
	Cleanup  CleanupConfig  `yaml:"cleanup"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Env            string   `yaml:"env"`
	LogLevel       string   `yaml:"log_level"`
	BasePath       string   `yaml:"base_path"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// StorageConfig selects the blob backend. Backend "local" writes under
// LocalRoot; "s3" talks to AWS or a MinIO endpoint.
type StorageConfig struct {
	Backend   string `yaml:"backend"`
	LocalRoot string `yaml:"local_root"`
	BaseURL   string `yaml:"base_url"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

type AuthConfig struct {
	SecretKey string `yaml:"secret_key"`
}

// UploadConfig caps individual files, per-parent media counts, and the
// per-user aggregate quota. Sizes are bytes.
type UploadConfig struct {
	MaxFileSize        int64 `yaml:"max_file_size"`
	MaxImagesPerParent int   `yaml:"max_images_per_parent"`
	MaxVideosPerParent int   `yaml:"max_videos_per_parent"`
	UserStorageCap     int64 `yaml:"user_storage_cap"`
}

type CleanupConfig struct {
	Schedule string `yaml:"schedule"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           8004,
			Env:            "dev",
			LogLevel:       "debug",
			BasePath:       "/api/fitness",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Storage: StorageConfig{
			Backend:   "local",
			LocalRoot: "./data/uploads",
			BaseURL:   "http://localhost:8004/api/fitness/files",
			Region:    "ap-northeast-2",
		},
		Upload: UploadConfig{
			MaxFileSize:        50 * 1024 * 1024,
			MaxImagesPerParent: 5,
			MaxVideosPerParent: 2,
			UserStorageCap:     1024 * 1024 * 1024,
		},
		Cleanup: CleanupConfig{
			Schedule: "*/10 * * * *",
		},
	}

	// Load from yaml file if exists
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override with environment variables
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if env := os.Getenv("ENV"); env != "" {
		cfg.Server.Env = env
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if root := os.Getenv("STORAGE_LOCAL_ROOT"); root != "" {
		cfg.Storage.LocalRoot = root
	}
	if baseURL := os.Getenv("STORAGE_BASE_URL"); baseURL != "" {
		cfg.Storage.BaseURL = baseURL
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		cfg.Storage.Bucket = bucket
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		cfg.Storage.Region = region
	}
	if accessKey := os.Getenv("S3_ACCESS_KEY"); accessKey != "" {
		cfg.Storage.AccessKey = accessKey
	}
	if secretKey := os.Getenv("S3_SECRET_KEY"); secretKey != "" {
		cfg.Storage.SecretKey = secretKey
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg.Storage.Endpoint = endpoint
	}
	if secretKey := os.Getenv("SECRET_KEY"); secretKey != "" {
		cfg.Auth.SecretKey = secretKey
	}
	if maxSize := os.Getenv("UPLOAD_MAX_FILE_SIZE"); maxSize != "" {
		if s, err := strconv.ParseInt(maxSize, 10, 64); err == nil {
			cfg.Upload.MaxFileSize = s
		}
	}
	if quota := os.Getenv("UPLOAD_USER_STORAGE_CAP"); quota != "" {
		if s, err := strconv.ParseInt(quota, 10, 64); err == nil {
			cfg.Upload.UserStorageCap = s
		}
	}
	if schedule := os.Getenv("CLEANUP_SCHEDULE"); schedule != "" {
		cfg.Cleanup.Schedule = schedule
	}

	return cfg, nil
}
