package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type ViewCfg struct {
	CenterLat     float64 `yaml:"center_lat"`
	CenterLng     float64 `yaml:"center_lng"`
	Zoom          int     `yaml:"zoom"`
	TileURL       string  `yaml:"tile_url"`
	ClusterOffset int     `yaml:"cluster_res_offset"`
	ClusterOffAt  int     `yaml:"cluster_disable_at_zoom"`
	ClusterCache  int     `yaml:"cluster_cache_size"`
}

type DataCfg struct {
	Driver  string // file | http | redis
	Dir     string
	URL     string
	Timeout time.Duration
}

type EventsCfg struct {
	Enabled bool
	Brokers string
	Topic   string
	Queue   int
}

type ETLCfg struct {
	Domain   string
	Dataset  string
	AppToken string
	Where    string
	Limit    int
	Sinks    string
	OutDir   string
}

type RedisCfg struct {
	Addr         string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Config struct {
	Addr       string
	LogLevel   string
	Redis      RedisCfg
	SessionMax int
	View       ViewCfg
	Data       DataCfg
	Events     EventsCfg
	ETL        ETLCfg
}

func FromEnv() Config {
	return Config{
		Addr:     getenv("ADDR", ":8090"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		Redis: RedisCfg{
			Addr:         getenv("REDIS_ADDR", "localhost:6379"),
			PoolSize:     getint("REDIS_POOL_SIZE", 16),
			DialTimeout:  getduration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:  getduration("REDIS_READ_TIMEOUT", 2*time.Second),
			WriteTimeout: getduration("REDIS_WRITE_TIMEOUT", 2*time.Second),
		},
		SessionMax: getint("SESSION_MAX", 1024),
		View: ViewCfg{
			CenterLat:     getfloat("MAP_CENTER_LAT", 40.754),
			CenterLng:     getfloat("MAP_CENTER_LNG", -73.98),
			Zoom:          getint("MAP_ZOOM", 12),
			TileURL:       getenv("TILE_URL", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"),
			ClusterOffset: getint("CLUSTER_RES_OFFSET", 6),
			ClusterOffAt:  getint("CLUSTER_DISABLE_AT_ZOOM", 17),
			ClusterCache:  getint("CLUSTER_CACHE_SIZE", 64),
		},
		Data: DataCfg{
			Driver:  strings.ToLower(getenv("DATA_SOURCE", "file")),
			Dir:     getenv("DATA_DIR", "web/data"),
			URL:     getenv("DATA_URL", ""),
			Timeout: getduration("DATA_LOAD_TIMEOUT", 30*time.Second),
		},
		Events: EventsCfg{
			Enabled: getbool("EVENTS_ENABLED", false),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			Topic:   getenv("KAFKA_TOPIC", "filter-toggles"),
			Queue:   getint("EVENTS_QUEUE", 1024),
		},
		ETL: ETLCfg{
			Domain:   getenv("SOCRATA_DOMAIN", "data.cityofnewyork.us"),
			Dataset:  getenv("SOCRATA_DATASET", "92iy-9c3n"),
			AppToken: getenv("SOCRATA_APP_TOKEN", ""),
			Where:    getenv("SOCRATA_WHERE", "borough = 'MANHATTAN' AND vacant_6_30_or_date_sold = 'YES'"),
			Limit:    getint("SOCRATA_LIMIT", 30000),
			Sinks:    getenv("ETL_SINKS", "file"),
			OutDir:   getenv("ETL_OUT_DIR", "web/data"),
		},
	}
}

// BrokerList splits the comma separated broker list.
func (e EventsCfg) BrokerList() []string {
	return splitList(e.Brokers)
}

func (e ETLCfg) SinkList() []string {
	return splitList(e.Sinks)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
