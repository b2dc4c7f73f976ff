package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Most values have sensible defaults for local development.
type Config struct {
	ServerPort  string
	FFprobePath string // ffprobe 可执行文件路径，素材入库时探测时长
	IngestDir   string // 本地素材投递目录，ingest 监听此目录
	ExportDir   string // 导出草稿包的本地暂存目录

	// 画布与时间轴默认参数
	CanvasWidth  int
	CanvasHeight int
	DefaultFPS   int

	// MySQL配置
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis配置
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MinIO配置
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	// JWT配置
	JWTSecret string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv 不会覆盖已存在的环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	workBase := getEnv("FRAMEFLOW_WORK_DIR", "work")

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		FFprobePath: getEnv("FFPROBE_PATH", "ffprobe"),
		IngestDir:   getEnv("INGEST_DIR", filepath.Join(workBase, "ingest")),
		ExportDir:   getEnv("EXPORT_DIR", filepath.Join(workBase, "exports")),

		CanvasWidth:  getEnvInt("CANVAS_WIDTH", 1920),
		CanvasHeight: getEnvInt("CANVAS_HEIGHT", 1080),
		DefaultFPS:   getEnvInt("DEFAULT_FPS", 30),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // 密码不提供默认值
		DBName:     getEnv("DB_NAME", "frameflow"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "frameflow"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		JWTSecret: getEnv("JWT_SECRET", "frameflow-dev-secret"),
	}
}
