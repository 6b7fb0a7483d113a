package common_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fjacquet/budgea-salary/cmd/common"
	"fjacquet/budgea-salary/internal/config"
	"fjacquet/budgea-salary/internal/console"
	"fjacquet/budgea-salary/internal/container"
	"fjacquet/budgea-salary/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContainer(t *testing.T, baseURL, username, input string) (*container.Container, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		Log: config.LogConfig{Level: "info", Format: "text"},
		API: config.APIConfig{BaseURL: baseURL, Username: username, Application: "Android",
			Scope: "transfer", TimeoutSeconds: 5},
		Transfer: config.TransferConfig{AllowedCategories: []string{"Salariés"}, NewRecipientCategory: "Salariés"},
		PDF:      config.PDFConfig{Converter: config.ConverterNone, TextExtractor: config.ExtractorRaw},
		OCR:      config.OCRConfig{Provider: config.OCRProviderNone},
	}
	var out bytes.Buffer
	c, err := container.NewContainer(context.Background(), cfg,
		container.WithConsole(console.New(strings.NewReader(input), &out)),
		container.WithLogOutput(&bytes.Buffer{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, &out
}

func server(t *testing.T) *httptest.Server {
	t.Helper()
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/token":
			require.NoError(t, r.ParseForm())
			if r.PostForm.Get("password") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"code": "wrongpass"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-" + r.PostForm.Get("username")})
		case "/users/me/accounts":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"accounts": []models.Account{
				{ID: 12, Name: "Compte courant", FormattedBalance: "10 000,00 €"},
				{ID: 13, Name: "Compte paie", FormattedBalance: "5 000,00 €"},
			}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func TestLogin(t *testing.T) {
	s := server(t)

	tests := []struct {
		name      string
		username  string
		input     string
		wantToken string
		wantErr   string
	}{
		{name: "configured username", username: "payroll", input: "secret\n", wantToken: "tok-payroll"},
		{name: "asked username", input: "finance\nsecret\n", wantToken: "tok-finance"},
		{name: "wrong password", username: "payroll", input: "nope\n", wantErr: "wrongpass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := newContainer(t, s.URL, tt.username, tt.input)

			sess, err := common.Login(context.Background(), c)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, sess.Token)
			assert.NotEmpty(t, sess.RunID)
			assert.Contains(t, out.String(), "Please enter password for account")
		})
	}
}

func TestSelectAccount(t *testing.T) {
	s := server(t)
	sess := models.Session{Token: "tok", RunID: "run-1"}

	t.Run("flag", func(t *testing.T) {
		c, _ := newContainer(t, s.URL, "payroll", "")
		got, err := common.SelectAccount(context.Background(), c, sess, "13")
		require.NoError(t, err)
		assert.Equal(t, int64(13), got.AccountID)
		assert.Equal(t, "run-1", got.RunID)
	})

	t.Run("picked", func(t *testing.T) {
		c, out := newContainer(t, s.URL, "payroll", "12\n")
		got, err := common.SelectAccount(context.Background(), c, sess, "")
		require.NoError(t, err)
		assert.Equal(t, int64(12), got.AccountID)
		assert.Contains(t, out.String(), "Compte paie")
	})

	t.Run("invalid choice", func(t *testing.T) {
		c, _ := newContainer(t, s.URL, "payroll", "99\n")
		_, err := common.SelectAccount(context.Background(), c, sess, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "99 is not a valid account")
	})
}
