package main

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/imrishuroy/landing-checkout/internal/handlers"
	"github.com/imrishuroy/landing-checkout/internal/orders"
	"github.com/imrishuroy/landing-checkout/internal/server"
	"github.com/imrishuroy/landing-checkout/internal/validation"
)

func startAPI(t *testing.T) (*httptest.Server, *orders.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := orders.NewMemoryStore()
	rules := validation.Default()
	r, err := server.NewRouter(server.Options{
		Handlers: handlers.HandlerConfig{
			Orders: orders.NewService(store, validation.New(rules), 14900),
			Rules:  rules,
			Logger: zaptest.NewLogger(t),
		},
	})
	require.NoError(t, err)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func annArgs(api string) []string {
	return []string{
		"submit", "--api", api,
		"--name", "Ann", "--email", "ann@x.com", "--phone", "+1 555-0100",
		"--address1", "221B Baker St", "--address2", "", "--city", "London", "--state", "LN",
		"--country", "GB", "--pin", "NW1 6XE",
	}
}

func TestRulesCommand(t *testing.T) {
	srv, _ := startAPI(t)

	out, err := execute(t, "rules", "--api", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Unit price: 14900 cents")
	assert.Contains(t, out, "Invalid postal code")
	assert.Contains(t, out, "SG")
	assert.Contains(t, out, "at least 3 characters")
}

func TestSubmitCommand(t *testing.T) {
	srv, store := startAPI(t)

	out, err := execute(t, append(annArgs(srv.URL), "--qty", "2")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Total: $298")
	assert.Contains(t, out, "total $298")
	assert.Equal(t, 1, store.Len())
}

func TestSubmitCommand_InvalidNeverReachesAPI(t *testing.T) {
	srv, store := startAPI(t)

	args := annArgs(srv.URL)
	args = append(args, "--qty", "1", "--pin", "1234")
	out, err := execute(t, args...)
	require.Error(t, err)
	assert.Contains(t, out, "Invalid postal code")
	assert.Equal(t, 0, store.Len())
}

func TestSubmitCommand_QuantityFlagIsValidatedAsGiven(t *testing.T) {
	srv, store := startAPI(t)

	out, err := execute(t, append(annArgs(srv.URL), "--qty", "11")...)
	require.Error(t, err)
	assert.Contains(t, out, "Quantity 1–10")
	assert.Equal(t, 0, store.Len())
}

func TestPinCommand(t *testing.T) {
	out, err := execute(t, "pin", "US", "90210-1234")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	_, err = execute(t, "pin", "IN", "ABC123")
	assert.Error(t, err)
}

func TestDescribeRule(t *testing.T) {
	assert.Equal(t, "integer 1-10", describeRule(validation.FieldRule{Min: 1, Max: 10}))
	assert.Equal(t, "required", describeRule(validation.FieldRule{Required: true}))
	assert.Equal(t, "postal code for country", describeRule(validation.FieldRule{Postal: true}))
}
