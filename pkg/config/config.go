// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

type Config struct {
	Namespace string `env:"NAMESPACE" envDefault:"default" envDocs:"logical namespace prefixed onto every store key"`

	RedisAddr     string `env:"REDIS_ADDR"     envDefault:"localhost:6379" envDocs:"redis host:port"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""               envDocs:"redis password, empty for none"`
	RedisDB       int    `env:"REDIS_DB"       envDefault:"0"              envDocs:"redis database index"`

	TickIntervalSecond        int `env:"TICK_INTERVAL_SECOND"         envDefault:"20"   envDocs:"matchmaking tick interval in seconds"`
	TickLockTTLSecond         int `env:"TICK_LOCK_TTL_SECOND"         envDefault:"15"   envDocs:"run-lock lease TTL; an expired lease is reclaimable"`
	ResolveInitialDelaySecond int `env:"RESOLVE_INITIAL_DELAY_SECOND" envDefault:"1200" envDocs:"delay from match creation to the first resolution attempt"`
	ResolveRecheckDelaySecond int `env:"RESOLVE_RECHECK_DELAY_SECOND" envDefault:"300"  envDocs:"delay between resolution rechecks while below quorum"`
	TaskPollIntervalSecond    int `env:"TASK_POLL_INTERVAL_SECOND"    envDefault:"1"    envDocs:"scheduled-task queue poll interval in seconds"`
	ReclaimIntervalSecond     int `env:"RECLAIM_INTERVAL_SECOND"      envDefault:"3600" envDocs:"interval between orphaned voice-slot reclamation sweeps (0 disables)"`

	DiscordWebhookID    string `env:"DISCORD_WEBHOOK_ID"    envDefault:"" envDocs:"webhook id for match announcements, empty disables notification"`
	DiscordWebhookToken string `env:"DISCORD_WEBHOOK_TOKEN" envDefault:"" envDocs:"webhook token for match announcements"`

	MetricsAddr string `env:"METRICS_ADDR" envDefault:":8080" envDocs:"listen address for the prometheus /metrics endpoint"`
}
