package calendar_tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/calimport/internal/calendar"
	"github.com/teemow/calimport/internal/config"
	"github.com/teemow/calimport/internal/server"
)

// fakeCalendarAPI is a minimal in-memory Calendar v3 backend.
type fakeCalendarAPI struct {
	mu      sync.Mutex
	events  []*gcal.Event
	created []*gcal.Event
	deleted []string
	nextID  int
}

func (f *fakeCalendarAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/users/me/calendarList"):
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{
				{"id": "primary@example.com", "summary": "Me", "accessRole": "owner", "primary": true},
				{"id": "ja.japanese#holiday@group.v.calendar.google.com", "summary": "Holidays", "accessRole": "reader"},
				{"id": "team@example.com", "summary": "Team", "accessRole": "writer"},
			},
		})
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/events"):
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": f.events})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/events"):
		body, _ := io.ReadAll(r.Body)
		var ev gcal.Event
		_ = json.Unmarshal(body, &ev)
		f.nextID++
		ev.Id = "new" + string(rune('0'+f.nextID))
		f.created = append(f.created, &ev)
		_ = json.NewEncoder(w).Encode(&ev)
	case r.Method == http.MethodDelete:
		f.deleted = append(f.deleted, r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:])
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func newTestServerContext(t *testing.T, api *fakeCalendarAPI) *server.ServerContext {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Timezone = "UTC"
	sc, err := server.NewServerContext(context.Background(), server.Options{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	client, err := calendar.NewClient(context.Background(), "default", nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	sc.SetCalendarClientForAccount("default", client)
	return sc
}

func callTool(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func toolNames(s *mcpserver.MCPServer) []string {
	var names []string
	for _, st := range s.ListTools() {
		names = append(names, st.Tool.Name)
	}
	sort.Strings(names)
	return names
}

func TestRegisterCalendarTools(t *testing.T) {
	sc := newTestServerContext(t, &fakeCalendarAPI{})

	s := mcpserver.NewMCPServer("test", "0.0.0")
	require.NoError(t, RegisterCalendarTools(s, sc, false))
	assert.Equal(t, []string{
		"calendar_delete_range",
		"calendar_list_calendars",
		"calendar_preview_range",
		"calendar_register_events",
	}, toolNames(s))

	ro := mcpserver.NewMCPServer("test", "0.0.0")
	require.NoError(t, RegisterCalendarTools(ro, sc, true))
	assert.Equal(t, []string{"calendar_list_calendars", "calendar_preview_range"}, toolNames(ro))
}

func TestListCalendars_HidesReadOnlyAndHolidays(t *testing.T) {
	sc := newTestServerContext(t, &fakeCalendarAPI{})

	res, err := handleListCalendars(context.Background(), callTool(nil), sc)
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "Found 2 calendar(s)")
	assert.Contains(t, text, "team@example.com")
	assert.NotContains(t, text, "holiday")

	res, err = handleListCalendars(context.Background(), callTool(map[string]interface{}{"all": true}), sc)
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "Found 3 calendar(s)")
}

func TestListCalendars_UnknownAccount(t *testing.T) {
	sc := newTestServerContext(t, &fakeCalendarAPI{})

	res, err := handleListCalendars(context.Background(), callTool(map[string]interface{}{"account": "other"}), sc)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func writeSchedule(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.csv")
	content := "管理番号,物件名,予定開始,予定終了,担当\n" +
		"HK-001,Alpha,2024/05/01 09:00,2024/05/01 10:00,田中\n" +
		"HK-002,Beta,2024/05/02,2024/05/03,佐藤\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRegisterEvents(t *testing.T) {
	api := &fakeCalendarAPI{}
	sc := newTestServerContext(t, api)

	res, err := handleRegisterEvents(context.Background(), callTool(map[string]interface{}{
		"files":    writeSchedule(t),
		"describe": []interface{}{"担当"},
		"private":  false,
	}), sc)
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), "Registered 2 of 2 event(s) in primary")

	require.Len(t, api.created, 2)
	first := api.created[0]
	assert.Equal(t, "001Alpha", first.Summary)
	assert.Equal(t, "田中", first.Description)
	assert.Equal(t, "opaque", first.Transparency)
	assert.Equal(t, "2024-05-01T09:00:00Z", first.Start.DateTime)
	assert.NotEmpty(t, first.ExtendedProperties.Private["calimportRunId"])
}

func TestRegisterEvents_DryRun(t *testing.T) {
	api := &fakeCalendarAPI{}
	sc := newTestServerContext(t, api)

	res, err := handleRegisterEvents(context.Background(), callTool(map[string]interface{}{
		"files":  writeSchedule(t),
		"dryRun": true,
	}), sc)
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "Dry run: 2 event(s)")
	assert.Contains(t, text, "Subject,Start Date")
	assert.Contains(t, text, "002Beta")
	assert.Empty(t, api.created)
}

func TestRegisterEvents_Validation(t *testing.T) {
	sc := newTestServerContext(t, &fakeCalendarAPI{})

	res, err := handleRegisterEvents(context.Background(), callTool(map[string]interface{}{}), sc)
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = handleRegisterEvents(context.Background(), callTool(map[string]interface{}{"files": []interface{}{}}), sc)
	require.NoError(t, err)
	assert.True(t, res.IsError)

	// Sheets need an authenticator.
	res, err = handleRegisterEvents(context.Background(), callTool(map[string]interface{}{"sheets": "abc!A:F"}), sc)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func eventsInMay() []*gcal.Event {
	return []*gcal.Event{
		{Id: "e1", Summary: "001Alpha", Start: &gcal.EventDateTime{DateTime: "2024-05-01T09:00:00Z"}, End: &gcal.EventDateTime{DateTime: "2024-05-01T10:00:00Z"}},
		{Id: "e2", Summary: "Lunch", Start: &gcal.EventDateTime{Date: "2024-05-02"}, End: &gcal.EventDateTime{Date: "2024-05-03"}},
		{Id: "e3", Summary: "002Beta", Start: &gcal.EventDateTime{DateTime: "2024-05-03T09:00:00Z"}, End: &gcal.EventDateTime{DateTime: "2024-05-03T10:00:00Z"}},
	}
}

func TestPreviewRange(t *testing.T) {
	api := &fakeCalendarAPI{events: eventsInMay()}
	sc := newTestServerContext(t, api)

	res, err := handlePreviewRange(context.Background(), callTool(map[string]interface{}{
		"calendarId": "primary",
		"from":       "2024-05-01",
		"to":         "2024-05-03",
		"keyword":    "00",
	}), sc)
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "2 event(s) between 2024-05-01 and 2024-05-03 matching \"00\" (3 listed)")
	assert.Contains(t, text, "ID: e3")
	assert.Empty(t, api.deleted)
}

func TestPreviewRange_InvalidWindow(t *testing.T) {
	sc := newTestServerContext(t, &fakeCalendarAPI{})

	res, err := handlePreviewRange(context.Background(), callTool(map[string]interface{}{
		"calendarId": "primary",
		"from":       "2024-05-03",
		"to":         "2024-05-01",
	}), sc)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestDeleteRange(t *testing.T) {
	api := &fakeCalendarAPI{events: eventsInMay()}
	sc := newTestServerContext(t, api)

	args := map[string]interface{}{
		"calendarId": "primary",
		"from":       "2024-05-01",
		"to":         "2024-05-03",
	}
	res, err := handleDeleteRange(context.Background(), callTool(args), sc)
	require.NoError(t, err)
	assert.True(t, res.IsError, "confirm is required")
	assert.Empty(t, api.deleted)

	args["confirm"] = true
	res, err = handleDeleteRange(context.Background(), callTool(args), sc)
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), "Deleted 3 of 3 event(s)")
	assert.Equal(t, []string{"e1", "e2", "e3"}, api.deleted)
}
