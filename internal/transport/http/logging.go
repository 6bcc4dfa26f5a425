package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"maps"
	"mime"
	"mime/multipart"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const bodySummaryKey = "logbook.request.body"

const (
	redactedValue = "redacted"
	binaryValue   = "binary"
)

// bodySummarizer turns request bodies into something safe to put in a log
// line. Credentials are masked, photos collapse to "binary" and long values
// are clipped to limit bytes.
type bodySummarizer struct {
	limit   int
	secrets []string
}

var requestBodies = bodySummarizer{
	limit:   2048,
	secrets: []string{"password", "token", "secret"},
}

func registerLogging(e *echo.Echo, logger *zap.Logger) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		LogRemoteIP: true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logRequest(logger, c, v)
			return nil
		},
	}))

	e.Use(middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().ContentLength == 0
		},
		Handler: func(c echo.Context, reqBody, _ []byte) {
			if s := requestBodies.summarize(reqBody, c.Request().Header.Get(echo.HeaderContentType)); s != nil {
				c.Set(bodySummaryKey, s)
			}
		},
	}))
}

func logRequest(logger *zap.Logger, c echo.Context, v middleware.RequestLoggerValues) {
	hiker := "anonymous"
	if user, ok := CurrentUser(c); ok {
		hiker = user.ID.String()
	}
	fields := []zap.Field{
		zap.String("method", v.Method),
		zap.String("uri", v.URI),
		zap.Int("status", v.Status),
		zap.Duration("latency", v.Latency),
		zap.String("remote_ip", v.RemoteIP),
		zap.String("user_id", hiker),
	}
	if s := c.Get(bodySummaryKey); s != nil {
		fields = append(fields, zap.Any("body", s))
	}
	if v.Error != nil {
		fields = append(fields, zap.Error(v.Error))
	}

	level := zap.InfoLevel
	if v.Status >= 500 {
		level = zap.ErrorLevel
	} else if v.Status >= 400 {
		level = zap.WarnLevel
	}
	logger.Log(level, "request", fields...)
}

func (b bodySummarizer) summarize(body []byte, contentType string) any {
	if len(body) == 0 {
		return nil
	}
	mediaType, params, _ := mime.ParseMediaType(contentType)
	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		return b.form(body, params["boundary"])
	case mediaType == echo.MIMEApplicationJSON || json.Valid(body):
		var decoded any
		if err := json.Unmarshal(body, &decoded); err == nil {
			return b.capped(b.value(decoded, ""))
		}
	}
	if !printable(body) {
		return binaryValue
	}
	if b.secret(string(body)) {
		return redactedValue
	}
	return b.clip(string(body))
}

// form lists multipart fields by name. File parts are never read.
func (b bodySummarizer) form(body []byte, boundary string) any {
	if boundary == "" {
		return binaryValue
	}
	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	fields := map[string]any{}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return binaryValue
		}
		name := part.FormName()
		if name != "" {
			fields[name] = binaryValue
			if part.FileName() == "" {
				if data, err := io.ReadAll(io.LimitReader(part, int64(b.limit)+1)); err == nil {
					fields[name] = b.text(string(data), name)
				}
			}
		}
		_ = part.Close()
	}
	if len(fields) == 0 {
		return binaryValue
	}
	return b.capped(fields)
}

func (b bodySummarizer) value(v any, key string) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			if b.secret(k) {
				out[k] = redactedValue
				continue
			}
			out[k] = b.value(child, k)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = b.value(child, key)
		}
		return out
	case string:
		return b.text(v, key)
	default:
		if key != "" && b.secret(key) {
			return redactedValue
		}
		return v
	}
}

func (b bodySummarizer) text(s, key string) string {
	switch {
	case key != "" && b.secret(key):
		return redactedValue
	case !printable([]byte(s)):
		return binaryValue
	}
	return b.clip(s)
}

// capped replaces an oversized summary with the list of its top level keys.
func (b bodySummarizer) capped(v any) any {
	encoded, err := json.Marshal(v)
	if err != nil || len(encoded) <= b.limit {
		return v
	}
	if m, ok := v.(map[string]any); ok {
		return map[string]any{"_truncated": true, "_fields": slices.Sorted(maps.Keys(m))}
	}
	return map[string]any{"_truncated": true}
}

func (b bodySummarizer) secret(s string) bool {
	lowered := strings.ToLower(s)
	return slices.ContainsFunc(b.secrets, func(key string) bool {
		return strings.Contains(lowered, key)
	})
}

func (b bodySummarizer) clip(s string) string {
	if len(s) <= b.limit {
		return s
	}
	cut := b.limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...(truncated)"
}

func printable(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	return !bytes.ContainsFunc(data, func(r rune) bool {
		return !unicode.IsPrint(r) && !unicode.IsSpace(r)
	})
}
