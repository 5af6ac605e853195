package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		Port            int
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          int
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// ScheduleConfig holds the timing offsets of the reminder and
	// result-collection schedulers.
	ScheduleConfig struct {
		// ReminderLead is how long before a meeting's or contest's start
		// the reminder fires.
		ReminderLead time.Duration
		// ResultGrace is how long after a contest's end result collection
		// starts, giving platforms time to finalize standings.
		ResultGrace time.Duration
		// CourtesyDelay spaces consecutive outbound platform calls and
		// reminder emails so we do not trip abuse detection.
		CourtesyDelay time.Duration
		// FallbackInterval schedules records with missing/broken timing
		// fields instead of dropping them.
		FallbackInterval time.Duration
	}

	Config struct {
		Env              string // DEV (default), TEST, QA, PROD
		Debug            bool
		TestMode         bool
		AppName          string
		Build            string
		WorkDir          string
		FrontendBaseURL  string
		SecretKey        string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
		Schedule ScheduleConfig
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Klabu")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "k7a$bu-=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.debugHost", "0.0.0.0:8001")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "klabu")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("schedule.reminderLead", time.Hour)
	v.SetDefault("schedule.resultGrace", 2*time.Minute)
	v.SetDefault("schedule.courtesyDelay", 3*time.Second)
	v.SetDefault("schedule.fallbackInterval", time.Hour)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		AppName:          v.GetString("appName"),
		Build:            v.GetString("build"),
		WorkDir:          wd,
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		SecretKey:        v.GetString("secretKey"),
		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: durationOr(v, "server.shutdownTimeout", 5*time.Second),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Schedule: ScheduleConfig{
			ReminderLead:     durationOr(v, "schedule.reminderLead", time.Hour),
			ResultGrace:      durationOr(v, "schedule.resultGrace", 2*time.Minute),
			CourtesyDelay:    durationOr(v, "schedule.courtesyDelay", 3*time.Second),
			FallbackInterval: durationOr(v, "schedule.fallbackInterval", time.Hour),
		},
	}
}

// durationOr guards against malformed duration values in the environment;
// a broken timing field must not take the schedulers down.
func durationOr(v *viper.Viper, key string, dflt time.Duration) time.Duration {
	if d := v.GetDuration(key); d > 0 {
		return d
	}
	log.Printf("config: invalid or missing %q, using default %s", key, dflt)
	return dflt
}

func (sc ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", sc.Host, sc.Port)
}

func (dc DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", dc.Host, dc.Port)
}

// Getwd walks up from the current directory to find the project root.
// go-test changes the working directory to the test package being run during tests...
// see: https://stackoverflow.com/questions/23847003/golang-tests-and-working-directory
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
