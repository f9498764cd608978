package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/config"
	"github.com/lexai-app/lexai/internal/errors"
	"github.com/lexai-app/lexai/internal/store"
	"github.com/lexai-app/lexai/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv points the CLI at a fake backend and private config and data
// directories.
func setupEnv(t *testing.T) *testutil.Backend {
	t.Helper()

	backend := testutil.NewBackend(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("LEXAI_BACKEND_URL", backend.URL())
	t.Setenv("LEXAI_LOGGING_ENABLED", "false")

	viper.Reset()
	t.Cleanup(viper.Reset)
	return backend
}

// executeCommand runs lexai with args and stdin and returns captured output
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := executeCommand(t, "", args...)
	require.NoError(t, err, "lexai %s\n%s", strings.Join(args, " "), out)
	return out
}

func signIn(t *testing.T, backend *testutil.Backend) {
	t.Helper()
	backend.AddUser("ana@bufete.es", "secreto", "Ana", "Bufete A")
	run(t, "login", "-e", "ana@bufete.es", "-p", "secreto")
}

func TestRootCommand(t *testing.T) {
	root := NewRootCmd()
	assert.Equal(t, "lexai", root.Use)

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"login", "register", "logout", "status", "health", "cases", "chat", "categories", "analyze", "generate", "config"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestLoginStatusLogout(t *testing.T) {
	backend := setupEnv(t)
	backend.AddUser("ana@bufete.es", "secreto", "Ana", "Bufete A")

	out := run(t, "login", "-e", "ana@bufete.es", "-p", "secreto")
	assert.Contains(t, out, "Signed in as Ana <ana@bufete.es>")
	assert.Contains(t, out, "Organization: Bufete A")

	// A new process restores the session from the file store.
	out = run(t, "status")
	assert.Contains(t, out, "Signed in as Ana")
	assert.Contains(t, out, "User ID:")
	assert.Contains(t, out, "Token expires:")
	assert.Equal(t, 1, backend.Calls("POST /api/auth/login"), "status must not contact the backend")

	assert.Contains(t, run(t, "logout"), "Signed out")
	assert.Contains(t, run(t, "status"), "Not signed in")
	assert.Contains(t, run(t, "logout"), "Not signed in")
}

func TestLogout_Purge(t *testing.T) {
	backend := setupEnv(t)
	signIn(t, backend)
	run(t, "categories", "--select", "laboral")

	// A plain logout keeps the selected category.
	run(t, "logout")
	signIn(t, backend)
	assert.Contains(t, run(t, "categories"), "* 💼 laboral")

	out := run(t, "logout", "--purge")
	assert.Contains(t, out, "Signed out")
	assert.Contains(t, out, "Cleared stored credentials (file storage)")

	entries, err := os.ReadDir(filepath.Join(config.DataDir(), store.StateDirName))
	require.NoError(t, err)
	assert.Empty(t, entries, "purge removes every stored key")
	assert.Contains(t, run(t, "status"), "Not signed in")
}

func TestRejectedToken(t *testing.T) {
	backend := setupEnv(t)
	signIn(t, backend)
	backend.FailWith("GET /api/cases", http.StatusUnauthorized, "Token inválido")

	_, err := executeCommand(t, "", "cases", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnauthorized)
	assert.Contains(t, err.Error(), "run 'lexai login' again")
}

func TestLogin_PromptsForPassword(t *testing.T) {
	backend := setupEnv(t)
	backend.AddUser("ana@bufete.es", "secreto", "Ana", "Bufete A")

	out, err := executeCommand(t, "secreto\n", "login", "-e", "ana@bufete.es")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Ana")

	var body api.LoginRequest
	require.NoError(t, json.Unmarshal(backend.LastBody("POST /api/auth/login"), &body))
	assert.Equal(t, "secreto", body.Password)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	backend := setupEnv(t)
	backend.AddUser("ana@bufete.es", "secreto", "Ana", "Bufete A")

	_, err := executeCommand(t, "", "login", "-e", "ana@bufete.es", "-p", "otra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Credenciales inválidas")

	assert.Contains(t, run(t, "status"), "Not signed in")
}

func TestRegister(t *testing.T) {
	backend := setupEnv(t)

	_, err := executeCommand(t, "", "register", "-e", "luis@despacho.es", "-p", "clave")
	require.Error(t, err, "missing name and organization with no input to prompt from")
	assert.Zero(t, backend.Calls("POST /api/auth/register"))

	out, err := executeCommand(t, "Luis\n\n", "register", "-e", "luis@despacho.es", "-p", "clave")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Completa todos los campos")
	assert.Empty(t, out)

	out = run(t, "register", "-e", "luis@despacho.es", "-p", "clave", "-n", "Luis", "-o", "Despacho L")
	assert.Contains(t, out, "Signed in as Luis <luis@despacho.es>")
	assert.Contains(t, run(t, "status"), "Organization: Despacho L")
}

func TestCommandsRequireSession(t *testing.T) {
	setupEnv(t)

	for _, args := range [][]string{
		{"cases", "list"},
		{"cases", "show", "abc"},
		{"chat", "history"},
		{"chat", "send", "hola"},
		{"categories"},
	} {
		_, err := executeCommand(t, "", args...)
		assert.ErrorIs(t, err, errors.ErrNotAuthenticated, "lexai %s", strings.Join(args, " "))
	}
}

func TestCases(t *testing.T) {
	backend := setupEnv(t)
	signIn(t, backend)
	backend.AddCase("Divorcio García", "María García", "familia", api.StatusActive)
	closed := backend.AddCase("Despido Pérez", "Juan Pérez", "laboral", api.StatusClosed)

	out := run(t, "cases", "list")
	assert.Contains(t, out, "Divorcio García")
	assert.Contains(t, out, "Despido Pérez")

	out = run(t, "cases", "list", "--status", api.StatusClosed)
	assert.Contains(t, out, "Despido Pérez")
	assert.NotContains(t, out, "Divorcio García")

	_, err := executeCommand(t, "", "cases", "list", "--status", "pendiente")
	assert.Error(t, err)

	out = run(t, "cases", "show", closed)
	assert.Contains(t, out, "Despido Pérez")
	assert.Contains(t, out, "Descripción de Despido Pérez")

	_, err = executeCommand(t, "", "cases", "show", "no-existe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCasesCreate(t *testing.T) {
	backend := setupEnv(t)
	signIn(t, backend)

	_, err := executeCommand(t, "", "cases", "create", "--title", "Herencia López")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Cliente")
	assert.Zero(t, backend.Calls("POST /api/cases"))

	out := run(t, "cases", "create",
		"--title", "Herencia López ",
		"--client", "Ana López",
		"--type", "civil",
		"--description", "Reparto de la herencia",
		"--priority", api.PriorityHigh,
	)
	assert.Contains(t, out, "Created case")
	assert.Equal(t, 1, backend.CaseCount())

	var body api.NewCase
	require.NoError(t, json.Unmarshal(backend.LastBody("POST /api/cases"), &body))
	assert.Equal(t, api.NewCase{
		Title:       "Herencia López ",
		ClientName:  "Ana López",
		CaseType:    "civil",
		Description: "Reparto de la herencia",
		Priority:    api.PriorityHigh,
	}, body)
}

func TestChatAndCategories(t *testing.T) {
	backend := setupEnv(t)
	signIn(t, backend)

	out := run(t, "categories")
	for _, c := range testutil.Categories {
		assert.Contains(t, out, c["id"])
	}

	_, err := executeCommand(t, "", "categories", "--select", "astrologia")
	assert.Error(t, err)

	assert.Contains(t, run(t, "categories", "--select", "laboral"), "Selected Laboral")
	assert.Contains(t, run(t, "categories"), "* 💼 laboral")

	out = run(t, "chat", "send", "¿Cuánto", "dura", "el", "preaviso?")
	assert.Contains(t, out, "Respuesta sobre laboral: ¿Cuánto dura el preaviso?")

	var body api.ChatRequest
	require.NoError(t, json.Unmarshal(backend.LastBody("POST /api/chat/message"), &body))
	assert.Equal(t, "laboral", body.Category)

	// An explicit empty category asks a general question.
	run(t, "chat", "send", "--category", "", "hola")
	require.NoError(t, json.Unmarshal(backend.LastBody("POST /api/chat/message"), &body))
	assert.Empty(t, body.Category)

	id := backend.AddConversation("familia", "Custodia compartida")
	out = run(t, "chat", "history", "--category", "familia")
	assert.Contains(t, out, id)
	assert.NotContains(t, out, "Laboral")

	out = run(t, "chat", "show", id)
	assert.Contains(t, out, "Tú:")
	assert.Contains(t, out, "Custodia compartida")
}

func TestAnalyze(t *testing.T) {
	backend := setupEnv(t)
	signIn(t, backend)

	path := filepath.Join(t.TempDir(), "contrato.txt")
	require.NoError(t, os.WriteFile(path, []byte("El arrendatario abonará la renta."), 0o644))

	out := run(t, "analyze", path)
	assert.Contains(t, out, "Análisis: contrato.txt")
	assert.Contains(t, out, "Resumen")
	assert.Contains(t, out, "[ALTO]")

	_, err := executeCommand(t, "", "analyze", filepath.Join(t.TempDir(), "nada.txt"))
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	assert.Equal(t, 1, backend.Calls("POST /api/documents/analyze"))
}

func TestGenerate(t *testing.T) {
	backend := setupEnv(t)

	assert.Contains(t, run(t, "generate", "--list"), "contrato_compraventa")

	out := run(t, "generate", "--type", "contrato_compraventa", "--parte-a", "Ana Ruiz", "--importe", "150.000 €")
	assert.Contains(t, out, "Contrato de Compraventa - Generado")
	assert.Contains(t, out, "Ana Ruiz")
	assert.Contains(t, out, "150.000 €")

	dest := filepath.Join(t.TempDir(), "poder.txt")
	run(t, "generate", "--type", "poder_notarial", "--parte-a", "Luis Gómez", "-o", dest)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Luis Gómez")

	_, err = executeCommand(t, "", "generate", "--type", "hipoteca")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	_, err = executeCommand(t, "", "generate")
	assert.Error(t, err)

	assert.Zero(t, backend.TotalCalls(), "generation is local")
}

func TestHealth(t *testing.T) {
	backend := setupEnv(t)

	assert.Contains(t, run(t, "health"), "ok (LexAI API)")

	backend.FailWith("GET /api/health", http.StatusServiceUnavailable, "mantenimiento")
	_, err := executeCommand(t, "", "health")
	assert.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	backend := setupEnv(t)

	assert.Contains(t, run(t, "config", "path"), "(not created)")

	out := run(t, "config", "show")
	assert.Contains(t, out, "(none - using defaults)")
	assert.Contains(t, out, "url: "+backend.URL())

	out = run(t, "config", "init")
	assert.Contains(t, out, config.ConfigFile())
	data, err := os.ReadFile(config.ConfigFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), "sidebar_width: 28")

	_, err = executeCommand(t, "", "config", "init")
	assert.Error(t, err, "init must not overwrite")
	run(t, "config", "init", "--force")

	viper.Reset()
	assert.Contains(t, run(t, "config", "path"), "Active config: "+config.ConfigFile())
}

func TestConfigFlag_InvalidFile(t *testing.T) {
	setupEnv(t)

	path := filepath.Join(t.TempDir(), "lexai.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: sqlite\n"), 0o644))

	_, err := executeCommand(t, "", "--config", path, "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.backend")
}
