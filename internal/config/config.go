package config

import (
	"os"
	"strings"
)

type Config struct {
	HTTPAddr string
	DataDir  string // holds the active rubric document

	DBDriver string
	DBDSN    string

	AuthSecret    string
	AdminUsername string
	AdminPassword string

	CORSOrigins []string

	// LLM settings. An empty OpenAIKey puts the feedback pipeline and the
	// rubric extractor into offline mode.
	OpenAIKey      string
	OpenAIModel    string
	EvidenceStrict bool
	RubricProfile  string // "master" or "standard"
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:       addr,
		DataDir:        envOr("DATA_DIR", "./data"),
		DBDriver:       envOr("DB_DRIVER", "sqlite"),
		DBDSN:          envOr("DB_DSN", ""),
		AuthSecret:     envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUsername:  strings.TrimSpace(os.Getenv("ADMIN_USERNAME")),
		AdminPassword:  strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")),
		CORSOrigins:    csvOr("CORS_ORIGINS", "http://localhost:3000"),
		OpenAIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:    envOr("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		EvidenceStrict: envBool("EVIDENCE_STRICT", true),
		RubricProfile:  envOr("RUBRIC_PROFILE", "master"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
