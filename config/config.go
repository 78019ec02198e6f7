package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MonitorAddress string `mapstructure:"monitor_address"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type AuthConfig struct {
	Secret string `mapstructure:"secret"`
}

// GameConfig carries the engine timing and the default per-game settings.
// Creation requests may override the settings, not the timing.
type GameConfig struct {
	LeadInSeconds          int `mapstructure:"lead_in_seconds"`
	InterRoundPauseSeconds int `mapstructure:"inter_round_pause_seconds"`
	QuestionTimerSeconds   int `mapstructure:"question_timer_seconds"`
	LivesPerPlayer         int `mapstructure:"lives_per_player"`
	PointsPerCorrectAnswer int `mapstructure:"points_per_correct_answer"`
	BonusPointsForSpeed    int `mapstructure:"bonus_points_for_speed"`
	DefaultMaxPlayers      int `mapstructure:"default_max_players"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("game.lead_in_seconds", 3)
	viper.SetDefault("game.inter_round_pause_seconds", 5)
	viper.SetDefault("game.question_timer_seconds", 15)
	viper.SetDefault("game.lives_per_player", 3)
	viper.SetDefault("game.points_per_correct_answer", 100)
	viper.SetDefault("game.bonus_points_for_speed", 50)
	viper.SetDefault("game.default_max_players", 50)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
