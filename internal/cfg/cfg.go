package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/joho/godotenv"
)

type Config struct {
	Minio    *MinIOCfg
	Http     *HTTPConfig
	Db       *PGDBCfg
	Redis    *RedisCfg
	Kafka    *KafkaCfg
	Checkout *CheckoutCfg
	Auth     *AuthCfg
	Catalog  *CatalogCfg
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
	OutboxInterval    time.Duration // период опроса outbox
	OutboxBatch       int
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Название конкретного бакета в Minio
	MinioRootUser     string // Имя пользователя для доступа к Minio
	MinioRootPassword string // Пароль для доступа к Minio
	MinioUseSSL       bool
	PublicBaseURL     string // если задан, URL изображений строятся от него, а не от endpoint
	MaxImageBytes     int64
	MaxImageDimension int // длинная сторона после ресайза, px
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	SecureCookie bool
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN собирает строку подключения для pgx и migrate.
func (c *PGDBCfg) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	CatalogTTL  time.Duration
	CartTTL     time.Duration
	SessionTTL  time.Duration
}

// CheckoutCfg задаёт, куда уходит заказ. Пустой Destination отключает передачу.
type CheckoutCfg struct {
	Host        string
	Destination string
}

type AuthCfg struct {
	SessionTTL time.Duration
}

type CatalogCfg struct {
	AdminPageSize         int
	KeepPageOnQueryChange bool
	CleanupOrphanedImages bool
	FeedReconnectMaxDelay time.Duration
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	catalog, err := loadCatalogCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Minio:    minio,
		Http:     http,
		Db:       db,
		Redis:    redis,
		Kafka:    kafka,
		Checkout: loadCheckoutCfg(),
		Auth:     &AuthCfg{SessionTTL: redis.SessionTTL},
		Catalog:  catalog,
	}, nil
}

// LoadDotEnv подгружает переменные из файлов .env вне production (APP_ENV=production).
// Уже заданные переменные окружения не перезаписываются.
func LoadDotEnv(log logger.Logger, paths ...string) {
	if strings.EqualFold(os.Getenv("APP_ENV"), "production") {
		return
	}

	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			log.Debugf("env file %s not loaded: %v", p, err)
			continue
		}
		log.Infof("loaded environment from %s", p)
	}
}

// LoadPGDB загружает только настройки БД (для catalogctl).
func LoadPGDB(log logger.Logger) (*PGDBCfg, error) {
	return loadPGDBCfg(log)
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultOutboxInterval    = 2 * time.Second
		defaultOutboxBatch       = 50
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	topic := getEnvOrDefault("KAFKA_TOPIC", "products")

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	interval, err := parseDurationEnv("OUTBOX_INTERVAL", defaultOutboxInterval)
	if err != nil {
		return nil, e.Wrap("OUTBOX_INTERVAL", err)
	}

	batch, err := parseIntEnv("OUTBOX_BATCH", defaultOutboxBatch)
	if err != nil {
		return nil, e.Wrap("OUTBOX_BATCH", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
		OutboxInterval:    interval,
		OutboxBatch:       batch,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL        = false
		defaultEndpoint      = "minio:9000"
		defaultBucket        = "insumos"
		defaultMaxImageBytes = 10 << 20
		defaultMaxDimension  = 1600
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	maxBytes, err := parseIntEnv("MAX_IMAGE_BYTES", defaultMaxImageBytes)
	if err != nil {
		log.Errorf(err, "invalid MAX_IMAGE_BYTES")
		return nil, err
	}

	maxDim, err := parseIntEnv("MAX_IMAGE_DIMENSION", defaultMaxDimension)
	if err != nil {
		log.Errorf(err, "invalid MAX_IMAGE_DIMENSION")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		PublicBaseURL:     strings.TrimRight(getEnv("MINIO_PUBLIC_URL"), "/"),
		MaxImageBytes:     int64(maxBytes),
		MaxImageDimension: maxDim,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	// SSE-стрим держит соединение открытым, поэтому 0 отключает таймаут записи.
	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	secure, err := strconv.ParseBool(getEnvOrDefault("SECURE_COOKIES", "false"))
	if err != nil {
		log.Errorf(err, "invalid SECURE_COOKIES")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		SecureCookie: secure,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultCatalogTTL   = 3 * time.Minute
		defaultCartTTL      = 24 * time.Hour
		defaultSessionTTL   = 12 * time.Hour
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"DIAL_TIMEOUT", defaultDialTimeout, new(time.Duration)},
		{"READ_TIMEOUT", defaultReadTimeout, new(time.Duration)},
		{"WRITE_TIMEOUT", defaultWriteTimeout, new(time.Duration)},
		{"CATALOG_TTL", defaultCatalogTTL, new(time.Duration)},
		{"CART_TTL", defaultCartTTL, new(time.Duration)},
		{"SESSION_TTL", defaultSessionTTL, new(time.Duration)},
	}
	for _, d := range durations {
		v, err := parseDurationEnv(d.key, d.def)
		if err != nil {
			log.Errorf(err, "invalid %s", d.key)
			return nil, err
		}
		*d.dst = v
	}

	timeout := max(*durations[1].dst, *durations[2].dst)

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: *durations[0].dst,
		Timeout:     timeout,
		CatalogTTL:  *durations[3].dst,
		CartTTL:     *durations[4].dst,
		SessionTTL:  *durations[5].dst,
	}, nil
}

func loadCheckoutCfg() *CheckoutCfg {
	const (
		defaultHost        = "wa.me"
		defaultDestination = "+542616862323"
	)

	dest, ok := os.LookupEnv("CHECKOUT_DESTINATION")
	if !ok {
		dest = defaultDestination
	}

	return &CheckoutCfg{
		Host:        getEnvOrDefault("CHECKOUT_HOST", defaultHost),
		Destination: strings.TrimSpace(dest),
	}
}

func loadCatalogCfg(log logger.Logger) (*CatalogCfg, error) {
	const (
		defaultPageSize       = 5
		defaultReconnectDelay = 30 * time.Second
	)

	pageSize, err := parseIntEnv("ADMIN_PAGE_SIZE", defaultPageSize)
	if err != nil || pageSize < 1 {
		log.Errorf(err, "invalid ADMIN_PAGE_SIZE")
		return nil, e.ErrIncorrectEnvVariable
	}

	keepPage, err := strconv.ParseBool(getEnvOrDefault("ADMIN_KEEP_PAGE_ON_SEARCH", "false"))
	if err != nil {
		log.Errorf(err, "invalid ADMIN_KEEP_PAGE_ON_SEARCH")
		return nil, err
	}

	cleanup, err := strconv.ParseBool(getEnvOrDefault("PRODUCT_CLEANUP_ORPHANED_IMAGES", "false"))
	if err != nil {
		log.Errorf(err, "invalid PRODUCT_CLEANUP_ORPHANED_IMAGES")
		return nil, err
	}

	reconnect, err := parseDurationEnv("CATALOG_FEED_MAX_RECONNECT", defaultReconnectDelay)
	if err != nil {
		log.Errorf(err, "invalid CATALOG_FEED_MAX_RECONNECT")
		return nil, err
	}

	return &CatalogCfg{
		AdminPageSize:         pageSize,
		KeepPageOnQueryChange: keepPage,
		CleanupOrphanedImages: cleanup,
		FeedReconnectMaxDelay: reconnect,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
