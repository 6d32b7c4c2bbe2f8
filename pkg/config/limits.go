package config

// StoreConfig bounds the worker's object store. Zero values mean
// unlimited objects and the default shard count.
type StoreConfig struct {
	MaxObjects uint64 `mapstructure:"max_objects"`
	Shards     int    `mapstructure:"shards"`
}

// RateLimitConfig throttles inbound messages. RPS zero disables the
// limiter entirely.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}
