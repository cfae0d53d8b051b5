package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Application configuration
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string
	CategoriesFile    string
	RedisAddr         string
	CacheTTL          int

	// Marketplace upstream configuration
	MarketplaceBaseUrl      string
	MarketplaceAuthUrl      string
	MarketplaceClientID     string
	MarketplaceClientSecret string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
