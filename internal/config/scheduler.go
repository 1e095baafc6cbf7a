package config

type Scheduler struct {
	WeeklyBudget   int    `env:"WEEKLY_BUDGET,expand" envDefault:"600"`
	Timezone       string `env:"TIMEZONE,expand" envDefault:"UTC"`
	RecentComments int    `env:"RECENT_COMMENTS,expand" envDefault:"5"`
	Cron           Cron   `envPrefix:"CRON_"`
}

// Cron configures the periodic triggers. Specs use the six fields
// format, seconds first.
type Cron struct {
	Schedule ScheduleTrigger `envPrefix:"SCHEDULE_"`
	Pickup   PickupTrigger   `envPrefix:"PICKUP_"`
}

type ScheduleTrigger struct {
	Enabled bool   `env:"ENABLED,expand" envDefault:"true"`
	Spec    string `env:"SPEC,expand" envDefault:"0 0 6 * * *"`
}

type PickupTrigger struct {
	Enabled bool   `env:"ENABLED,expand" envDefault:"false"`
	Spec    string `env:"SPEC,expand" envDefault:"0 */15 * * * *"`
}
