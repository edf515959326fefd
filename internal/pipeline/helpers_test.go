package pipeline

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sap8899/reportly/internal/graph"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// fakeDirectory serves the directory endpoints the pipeline queries.
// Payload fields hold JSON arrays; empty fields serve empty pages.
type fakeDirectory struct {
	profile         string
	failProfile     bool
	initiated       string
	targeted        string
	signinSuccess   string
	signinFailed    string
	groupsDirect    string
	groupsTrans     string
	groupMemberOf   map[string]string
	roleAssignments string
	roleEligibility string
	ownedObjects    string
	ownedDevices    string
	mfa             string
}

func orEmpty(s string) string {
	if s == "" {
		return "[]"
	}
	return s
}

func (f *fakeDirectory) start(t *testing.T) *graph.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filter := r.URL.Query().Get("$filter")
		path := r.URL.Path
		page := func(items string) {
			fmt.Fprintf(w, `{"value": %s}`, orEmpty(items))
		}

		switch {
		case strings.HasSuffix(path, "/memberOf/microsoft.graph.group"):
			page(f.groupsDirect)
		case strings.HasSuffix(path, "/transitiveMemberOf/microsoft.graph.group"):
			page(f.groupsTrans)
		case strings.HasSuffix(path, "/ownedObjects"):
			page(f.ownedObjects)
		case strings.HasSuffix(path, "/ownedDevices"):
			page(f.ownedDevices)
		case strings.HasPrefix(path, "/v1.0/users/"):
			if f.failProfile {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"error":{"code":"internalServerError","message":"boom"}}`)
				return
			}
			fmt.Fprint(w, f.profile)
		case path == "/v1.0/auditLogs/directoryAudits":
			if strings.Contains(filter, "initiatedBy") {
				page(f.initiated)
			} else {
				page(f.targeted)
			}
		case path == "/v1.0/auditLogs/signIns":
			if strings.Contains(filter, "eq 0") {
				page(f.signinSuccess)
			} else {
				page(f.signinFailed)
			}
		case strings.HasPrefix(path, "/v1.0/groups/") && strings.HasSuffix(path, "/memberOf"):
			id := strings.TrimSuffix(strings.TrimPrefix(path, "/v1.0/groups/"), "/memberOf")
			page(f.groupMemberOf[id])
		case path == "/v1.0/roleManagement/directory/roleAssignments":
			page(f.roleAssignments)
		case path == "/v1.0/roleManagement/directory/roleEligibilityScheduleInstances":
			page(f.roleEligibility)
		case path == "/beta/reports/credentialUserRegistrationDetails":
			page(f.mfa)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return graph.New(nil, graph.WithBaseURL(srv.URL))
}
