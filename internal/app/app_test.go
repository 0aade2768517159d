package app

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/guttosm/freightrates/config"
	"github.com/guttosm/freightrates/internal/storage"
)

func withConfig(t *testing.T, cfg config.Config) {
	t.Helper()
	old := config.AppConfig
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = old })
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

// TestInitializeApp_DBFailure ensures InitializeApp returns error when DB cannot connect.
func TestInitializeApp_DBFailure(t *testing.T) {
	withConfig(t, config.Config{Storage: config.StorageConfig{Driver: "postgres"}})

	old := postgresOpener
	postgresOpener = func(config.Config) (*sql.DB, error) { return nil, errors.New("connection refused") }
	t.Cleanup(func() { postgresOpener = old })

	r, cleanup, err := InitializeApp()
	if err == nil || r != nil || cleanup != nil {
		if cleanup != nil {
			cleanup()
		}
		t.Fatalf("expected error from InitializeApp with unreachable DB")
	}
}

func TestInitializeApp_HappyPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	mock.ExpectClose()

	old := postgresOpener
	postgresOpener = func(config.Config) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() { postgresOpener = old })

	withConfig(t, config.Config{
		Storage: config.StorageConfig{Driver: "postgres"},
		Upload:  config.UploadConfig{WriteMode: "insert"},
	})

	router, cleanup, err := InitializeApp()
	if err != nil || router == nil || cleanup == nil {
		t.Fatalf("InitializeApp failed: %v", err)
	}

	if w := get(t, router, "/healthz"); w.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", w.Code)
	}
	if w := get(t, router, "/readyz"); w.Code != http.StatusOK {
		t.Fatalf("readyz status=%d body=%s", w.Code, w.Body.String())
	}

	cleanup()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInitializeApp_InvalidWriteMode(t *testing.T) {
	withConfig(t, config.Config{
		Storage: config.StorageConfig{Driver: "sqlite"},
		SQLite:  config.SQLiteConfig{Path: ":memory:"},
		Upload:  config.UploadConfig{WriteMode: "merge"},
	})

	if _, _, err := InitializeApp(); err == nil {
		t.Fatalf("expected error for unknown write mode")
	}
}

func TestInitializeApp_SQLiteWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	withConfig(t, config.Config{
		Storage: config.StorageConfig{Driver: "sqlite"},
		SQLite:  config.SQLiteConfig{Path: ":memory:"},
		Redis:   config.RedisConfig{URL: "redis://" + mr.Addr()},
	})

	router, cleanup, err := InitializeApp()
	if err != nil {
		t.Fatalf("InitializeApp: %v", err)
	}
	defer cleanup()

	if w := get(t, router, "/readyz"); w.Code != http.StatusOK {
		t.Fatalf("readyz status=%d body=%s", w.Code, w.Body.String())
	}

	// Unseeded store: days without prices are omitted.
	w := get(t, router, "/api/rates/2016-01-01/2016-01-02/CNSGH/NLRTM/")
	if w.Code != http.StatusOK || w.Body.String() != `[{"status":"success","data":[]}]` {
		t.Fatalf("rates status=%d body=%s", w.Code, w.Body.String())
	}

	mr.SetError("LOADING")
	w = get(t, router, "/readyz")
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), `"redis"`) {
		t.Fatalf("readyz after redis failure status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestInitializeApp_RedisUnreachable(t *testing.T) {
	withConfig(t, config.Config{
		Storage: config.StorageConfig{Driver: "sqlite"},
		SQLite:  config.SQLiteConfig{Path: ":memory:"},
		Redis:   config.RedisConfig{URL: "redis://127.0.0.1:1"},
	})

	if _, _, err := InitializeApp(); err == nil {
		t.Fatalf("expected redis connection error")
	}
}

func TestOpenStores(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		if _, err := OpenStores(config.Config{Storage: config.StorageConfig{Driver: "mongo"}}); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("sqlite opener error", func(t *testing.T) {
		old := sqliteOpener
		sqliteOpener = func(string) (*storage.SQLiteStore, error) { return nil, errors.New("locked") }
		t.Cleanup(func() { sqliteOpener = old })

		if _, err := OpenStores(config.Config{Storage: config.StorageConfig{Driver: "sqlite"}}); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		st, err := OpenStores(config.Config{
			Storage: config.StorageConfig{Driver: "sqlite"},
			SQLite:  config.SQLiteConfig{Path: ":memory:"},
		})
		if err != nil {
			t.Fatalf("OpenStores: %v", err)
		}
		defer st.Close()
		if st.Prices == nil || st.Locations == nil {
			t.Fatalf("stores not wired: %+v", st)
		}
	})
}

func TestConnectRedis_Disabled(t *testing.T) {
	rdb, err := ConnectRedis(t.Context(), config.Config{})
	if rdb != nil || err != nil {
		t.Fatalf("expected nil client and nil error, got %v, %v", rdb, err)
	}
	if _, err := ConnectRedis(t.Context(), config.Config{Redis: config.RedisConfig{URL: "::bad"}}); err == nil {
		t.Fatalf("expected parse error")
	}
}
