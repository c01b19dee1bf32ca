package cfg

import "time"

type Cfg struct {
	// Content configuration
	PostsDir   string
	PostsGlob  string
	SiteConfig string
	DBPath     string
	BuildDir   string

	// Application configuration
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Cache configuration
	RedisAddr string
	CacheTTL  int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}

func (c *Cfg) GetSchedulerInterval() time.Duration {
	return time.Duration(c.SchedulerInterval) * time.Second
}

func (c *Cfg) GetCacheTTL() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// BuildMode reports whether the process should export static files instead of serving.
func (c *Cfg) BuildMode() bool {
	return c.BuildDir != ""
}
