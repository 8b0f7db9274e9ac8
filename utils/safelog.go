// utils/safelog.go
// ============================================================================
// SAFE LOGGING - masks personal data in production
// ============================================================================
// Logging helpers that automatically mask guest/contact personal information
// (emails, phone numbers) when running in production mode.
// ============================================================================

package utils

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
)

var (
	// IsProduction determines whether sensitive data gets masked.
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		os.Getenv("ENVIRONMENT") == "production" ||
		os.Getenv("ENV") == "production"

	LogLevel = getLogLevel()
)

const (
	LogLevelDebug = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func getLogLevel() int {
	level := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	switch level {
	case "DEBUG":
		return LogLevelDebug
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	phoneRegex = regexp.MustCompile(`(\+\d{1,3}[\s.-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{3,4}`)

	uuidRegex = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// MaskEmail keeps the first character and the domain: j***@example.com
func MaskEmail(email string) string {
	if !IsProduction {
		return email
	}
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// Sanitize masks personal data patterns inside an arbitrary message.
func Sanitize(msg string) string {
	if !IsProduction {
		return msg
	}
	msg = emailRegex.ReplaceAllStringFunc(msg, func(m string) string {
		at := strings.Index(m, "@")
		return m[:1] + "***" + m[at:]
	})
	msg = phoneRegex.ReplaceAllString(msg, "***-***")
	msg = uuidRegex.ReplaceAllStringFunc(msg, func(m string) string {
		return m[:8] + "-****"
	})
	return msg
}

func SafeDebug(format string, args ...interface{}) {
	if LogLevel <= LogLevelDebug {
		log.Printf("🔍 %s", Sanitize(fmt.Sprintf(format, args...)))
	}
}

func SafeInfo(format string, args ...interface{}) {
	if LogLevel <= LogLevelInfo {
		log.Printf("ℹ️ %s", Sanitize(fmt.Sprintf(format, args...)))
	}
}

func SafeWarn(format string, args ...interface{}) {
	if LogLevel <= LogLevelWarn {
		log.Printf("⚠️ %s", Sanitize(fmt.Sprintf(format, args...)))
	}
}

func SafeError(format string, args ...interface{}) {
	if LogLevel <= LogLevelError {
		log.Printf("❌ %s", Sanitize(fmt.Sprintf(format, args...)))
	}
}
