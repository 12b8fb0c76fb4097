package config // package config loads application configuration from environment variables

import (
	"errors"   // errors matches the not-exist error of an absent .env file
	"io/fs"    // fs provides the not-exist sentinel
	"log"      // log is used to report configuration errors and halt execution
	"net/url"  // url validates the API base address
	"os"       // os provides access to environment variables
	"strconv"  // strconv converts strings to other types
	"strings"  // strings trims trailing slashes from the API address
	"time"     // time parses durations

	"github.com/joho/godotenv" // godotenv loads a local .env file into the environment
)

// Config holds all runtime configuration values of the console.  Each field
// corresponds to an environment variable; only API_BASE_URL is required,
// everything else has a default suited to local development.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	APIBaseURL     string        // base address of the concert REST API, without trailing slash
	APITimeout     time.Duration // per-call timeout for requests to the API
	NotifyTTL      time.Duration // how long a notification stays visible
	SessionIdleTTL time.Duration // idle time after which a console session is dropped
	PageSize       int           // rows per page of every data table
	SessionCookie  string        // name of the console session cookie
	AMQPURL        string        // broker address for ticket activity events (empty disables publishing)
	ActivityQueue  string        // queue name for ticket activity events
	ActivityLog    string        // file the activity consumer appends to (empty disables the consumer)
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first when it
// exists; variables already set in the process environment win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: .env ignored: %v", err)
	}
	return Config{
		Env:            envStr("APP_ENV", "dev"),                        // environment (dev/test/prod)
		Port:           envStr("APP_PORT", "8080"),                      // port to bind the HTTP server
		APIBaseURL:     mustURL("API_BASE_URL"),                         // REST API address
		APITimeout:     envDur("API_TIMEOUT", 10*time.Second),           // timeout per API call
		NotifyTTL:      envDur("NOTIFY_TTL", 5*time.Second),             // notification lifetime
		SessionIdleTTL: envDur("SESSION_IDLE_TTL", 30*time.Minute),      // idle session eviction
		PageSize:       positive(envInt("TABLE_PAGE_SIZE", 20), 20),     // rows per table page
		SessionCookie:  envStr("SESSION_COOKIE", "console_sid"),         // console session cookie name
		AMQPURL:        amqpURL(),                                       // broker for activity events
		ActivityQueue:  envStr("ACTIVITY_QUEUE", "ticket.activity"),     // activity queue name
		ActivityLog:    os.Getenv("ACTIVITY_LOG"),                       // consumer log file
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustURL is like must() but requires an absolute http(s) URL.  A trailing
// slash is removed so endpoints can be appended as "/api/...".
func mustURL(key string) string {
	s := must(key)
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		log.Fatalf("invalid url for %s: %q", key, s)
	}
	return strings.TrimRight(s, "/")
}

// amqpURL returns RABBITMQ_URL, falling back to AMQP_URL.  Unlike the API
// address it is optional: an empty value turns event publishing off.
func amqpURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

func positive(n, d int) int {
	if n < 1 {
		return d
	}
	return n
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
