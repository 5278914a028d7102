package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Sheets    SheetsConfig
	Notify    NotifyConfig
	Scheduler SchedulerConfig
	Canvass   CanvassConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig contains configuration required to export abstracts to Google Sheets.
// Export is disabled when either field is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the sheets export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// NotifyConfig points at the chat webhook receiving workflow notices.
type NotifyConfig struct {
	WebhookURL string
	Token      string
}

// SchedulerConfig holds cron schedules.
type SchedulerConfig struct {
	OverdueSchedule string
	DigestSchedule  string
	Timezone        string
}

// Signatory is a configured roster entry.
type Signatory struct {
	Name string
	Role string
}

// Division is a configured canvassing division and its canvasser.
type Division struct {
	Name      string
	Canvasser string
}

// CanvassConfig lists the rosters and divisions every new session starts with.
type CanvassConfig struct {
	BACMembers          []Signatory
	AbstractSignatories []Signatory
	Divisions           []Division
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "procurement"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
			Token:      os.Getenv("NOTIFY_WEBHOOK_TOKEN"),
		},
		Scheduler: SchedulerConfig{
			OverdueSchedule: getenvWithDefault("OVERDUE_CRON_SCHEDULE", "0 8 * * 1-5"),
			DigestSchedule:  getenvWithDefault("DIGEST_CRON_SCHEDULE", "0 17 * * 5"),
			Timezone:        getenvWithDefault("TIMEZONE", "Asia/Manila"),
		},
		Canvass: CanvassConfig{
			BACMembers: parseSignatories(getenvWithDefault("BAC_MEMBERS",
				"BAC Chairperson:Chairperson,BAC Vice Chairperson:Vice Chairperson,BAC Member:Member")),
			AbstractSignatories: parseSignatories(getenvWithDefault("ABSTRACT_SIGNATORIES",
				"BAC Chairperson:Chairperson,BAC Secretariat:Secretariat,PARPO II:Approving Officer")),
			Divisions: parseDivisions(getenvWithDefault("CANVASS_DIVISIONS",
				"Administrative:,Operations:,Legal:")),
		},
		Log: LogConfig{
			Level:  getenvWithDefault("LOG_LEVEL", "info"),
			Format: getenvWithDefault("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must not be empty")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.Scheduler.OverdueSchedule == "" {
		return errors.New("OVERDUE_CRON_SCHEDULE must be provided")
	}

	if c.Scheduler.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if len(c.Canvass.BACMembers) == 0 {
		return errors.New("BAC_MEMBERS must list at least one signatory")
	}

	if len(c.Canvass.AbstractSignatories) == 0 {
		return errors.New("ABSTRACT_SIGNATORIES must list at least one signatory")
	}

	if len(c.Canvass.Divisions) == 0 {
		return errors.New("CANVASS_DIVISIONS must list at least one division")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseSignatories reads "Name:Role,Name:Role" lists.
func parseSignatories(raw string) []Signatory {
	var out []Signatory
	for _, part := range strings.Split(raw, ",") {
		name, role, _ := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, Signatory{Name: name, Role: strings.TrimSpace(role)})
	}
	return out
}

// parseDivisions reads "Division:Canvasser,Division:Canvasser" lists.
func parseDivisions(raw string) []Division {
	var out []Division
	for _, part := range strings.Split(raw, ",") {
		name, canvasser, _ := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, Division{Name: name, Canvasser: strings.TrimSpace(canvasser)})
	}
	return out
}
