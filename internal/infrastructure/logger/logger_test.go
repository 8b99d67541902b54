package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	t.Run("defaults when config is nil", func(t *testing.T) {
		l, err := New(nil)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("fails for an unwritable file", func(t *testing.T) {
		_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
		assert.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestContextLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx := WithContext(context.Background(), base)
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithTemplateID(ctx, "tmpl-1")

	L(ctx).Info("propagated", zap.Int("fields", 6))

	logs := recorded.All()
	require.Len(t, logs, 1)
	fields := logs[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "tmpl-1", fields["template_id"])
	assert.Equal(t, int64(6), fields["fields"])
	assert.NotContains(t, fields, "trace_id")
}

func TestFromContext_NoLogger(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	assert.Equal(t, "", GetRequestID(context.Background()))
	assert.Equal(t, "", GetTraceID(context.Background()))
}

func TestGormLogger_Trace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info)
	fc := func() (string, int64) {
		return `UPDATE "product_templates" SET "weight_in_uom"=3.5 WHERE id = 'x'`, 1
	}

	t.Run("summarises statements by default", func(t *testing.T) {
		gl.Trace(context.Background(), time.Now(), fc, nil)
		logs := recorded.TakeAll()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL Query", logs[0].Message)
		assert.Equal(t, "UPDATE product_templates", logs[0].ContextMap()["sql"])
	})

	t.Run("logs full SQL when enabled", func(t *testing.T) {
		full := NewGormLogger(zap.New(core), gormlogger.Info, WithFullSQL(true))
		full.Trace(context.Background(), time.Now(), fc, nil)
		logs := recorded.TakeAll()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].ContextMap()["sql"], "3.5")
	})

	t.Run("ignores record not found", func(t *testing.T) {
		gl.Trace(context.Background(), time.Now(), fc, gormlogger.ErrRecordNotFound)
		assert.Empty(t, recorded.TakeAll())
	})

	t.Run("warns on slow queries", func(t *testing.T) {
		slow := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(time.Millisecond))
		slow.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
		logs := recorded.TakeAll()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		gl.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), fc, assert.AnError)
		assert.Empty(t, recorded.TakeAll())
	})
}

func TestStatementSummary(t *testing.T) {
	assert.Equal(t, "SELECT product_variants", statementSummary(`SELECT * FROM "product_variants" WHERE template_id = $1`))
	assert.Equal(t, "INSERT units_of_measure", statementSummary("INSERT INTO `units_of_measure` (code) VALUES ('KG')"))
	assert.Equal(t, "BEGIN", statementSummary("BEGIN"))
	assert.Equal(t, "", statementSummary("  "))
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-42")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/units/:id", func(c *gin.Context) {
		assert.Equal(t, "req-42", GetRequestID(c.Request.Context()))
		L(c.Request.Context()).Info("handler")
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/units/abc?x=1", nil))

	logs := recorded.All()
	require.Len(t, logs, 2)
	assert.Equal(t, "handler", logs[0].Message)
	assert.Equal(t, "HTTP Request", logs[1].Message)
	assert.Equal(t, zapcore.WarnLevel, logs[1].Level)
	fields := logs[1].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "/units/:id", fields["route"])
	assert.Equal(t, "x=1", fields["query"])
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	require.Len(t, recorded.All(), 1)
	assert.NotNil(t, GetGinLogger(&gin.Context{}))
}
