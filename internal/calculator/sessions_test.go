package calculator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"calculator-api/internal/session"
	"calculator-api/internal/testutil"
)

func createSession(t *testing.T, h http.Handler) SessionResponse {
	t.Helper()
	w := postJSON(t, h, "/calculator/sessions", "")
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	return resp
}

func press(t *testing.T, h http.Handler, id, body string, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()
	w := postJSON(t, h, "/calculator/sessions/"+id+"/keys", body)
	testutil.CheckResponseCode(t, wantStatus, w.Code)
	return w
}

func TestSessionLifecycle(t *testing.T) {
	store := session.NewStore(session.Options{})
	h := newTestRouter(t, store)

	created := createSession(t, h)
	if created.ID == "" {
		t.Fatal("expected session id")
	}
	if created.State.Display != "0" || created.State.Phase != "idle" {
		t.Fatalf("unexpected initial state %#v", created.State)
	}

	w := press(t, h, created.ID, `{"keys":["5","+"]}`, http.StatusOK)
	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if resp.State.Phase != "operand_pending" || resp.State.PreviousValue != "5" || resp.State.Operation != "+" {
		t.Fatalf("unexpected pending state %#v", resp.State)
	}
	if !resp.State.WaitingForOperand {
		t.Fatal("expected waiting_for_operand after operator")
	}

	w = press(t, h, created.ID, `{"key":"3","keys":["="]}`, http.StatusOK)
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.State.Display != "8" {
		t.Fatalf("expected display 8, got %q", resp.State.Display)
	}

	req := httptest.NewRequest(http.MethodGet, "/calculator/sessions/"+created.ID, nil)
	w = testutil.ExecuteRequest(req, h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.State.Display != "8" || resp.State.Phase != "result" {
		t.Fatalf("unexpected state after evaluate %#v", resp.State)
	}

	req = httptest.NewRequest(http.MethodDelete, "/calculator/sessions/"+created.ID, nil)
	w = testutil.ExecuteRequest(req, h)
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)

	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d sessions", store.Len())
	}

	req = httptest.NewRequest(http.MethodGet, "/calculator/sessions/"+created.ID, nil)
	w = testutil.ExecuteRequest(req, h)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)
}

func TestSessionDivisionByZeroIsNotAnError(t *testing.T) {
	h := newTestRouter(t, session.NewStore(session.Options{}))
	created := createSession(t, h)

	w := press(t, h, created.ID, `{"keys":["7","÷","0","="]}`, http.StatusOK)

	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.State.Display != "Infinity" {
		t.Fatalf("expected display Infinity, got %q", resp.State.Display)
	}
}

func TestSessionUnknownKeyLeavesStateUntouched(t *testing.T) {
	h := newTestRouter(t, session.NewStore(session.Options{}))
	created := createSession(t, h)

	press(t, h, created.ID, `{"keys":["4","2"]}`, http.StatusOK)

	w := press(t, h, created.ID, `{"keys":["+","sqrt","1"]}`, http.StatusBadRequest)
	var errBody map[string]string
	testutil.DecodeJSONBody(t, w.Body, &errBody)
	if errBody["error"] == "" {
		t.Fatal("expected error message")
	}

	req := httptest.NewRequest(http.MethodGet, "/calculator/sessions/"+created.ID, nil)
	w = testutil.ExecuteRequest(req, h)

	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.State.Display != "42" || resp.State.Phase != "idle" {
		t.Fatalf("expected untouched state, got %#v", resp.State)
	}
}

func TestSessionPressErrors(t *testing.T) {
	h := newTestRouter(t, session.NewStore(session.Options{}))
	created := createSession(t, h)

	press(t, h, created.ID, `{}`, http.StatusBadRequest)
	press(t, h, created.ID, `[`, http.StatusBadRequest)
	press(t, h, "does-not-exist", `{"key":"1"}`, http.StatusNotFound)

	req := httptest.NewRequest(http.MethodDelete, "/calculator/sessions/does-not-exist", nil)
	w := testutil.ExecuteRequest(req, h)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)
}

func TestSessionCapacity(t *testing.T) {
	h := newTestRouter(t, session.NewStore(session.Options{MaxSessions: 1}))
	createSession(t, h)

	w := postJSON(t, h, "/calculator/sessions", "")
	testutil.CheckResponseCode(t, http.StatusServiceUnavailable, w.Code)
}

func TestSessionClear(t *testing.T) {
	h := newTestRouter(t, session.NewStore(session.Options{}))
	created := createSession(t, h)

	w := press(t, h, created.ID, `{"keys":["9","*","8","C"]}`, http.StatusOK)

	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.State != created.State {
		t.Fatalf("expected initial state after clear, got %#v", resp.State)
	}
}

func TestSessionPressUnknownSessionWinsOverBadBody(t *testing.T) {
	h := newTestRouter(t, session.NewStore(session.Options{}))

	for _, body := range []string{`{"keys":["sqrt"]}`, `[`, `{}`, keysBody(MaxKeysPerRequest + 1)} {
		press(t, h, "does-not-exist", body, http.StatusNotFound)
	}
}

func TestSessionPressKeyLimit(t *testing.T) {
	h := newTestRouter(t, session.NewStore(session.Options{}))
	created := createSession(t, h)

	w := press(t, h, created.ID, keysBody(MaxKeysPerRequest), http.StatusOK)
	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if len(resp.State.Display) != MaxKeysPerRequest {
		t.Fatalf("expected %d digits, got %d", MaxKeysPerRequest, len(resp.State.Display))
	}

	w = press(t, h, created.ID, keysBody(MaxKeysPerRequest+1), http.StatusBadRequest)
	var errBody map[string]string
	testutil.DecodeJSONBody(t, w.Body, &errBody)
	if errBody["error"] != "too many keys" {
		t.Fatalf("expected too many keys error, got %#v", errBody)
	}

	press(t, h, created.ID, `{"key":"1","keys":[`+strings.Repeat(`"1",`, maxBodyBytes/4)+`"1"]}`, http.StatusRequestEntityTooLarge)

	req := httptest.NewRequest(http.MethodGet, "/calculator/sessions/"+created.ID, nil)
	w = testutil.ExecuteRequest(req, h)
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if len(resp.State.Display) != MaxKeysPerRequest {
		t.Fatalf("rejected presses changed the session: %d digits", len(resp.State.Display))
	}
}

func TestSessionLongPressDoesNotBlockOtherSessions(t *testing.T) {
	h := newTestRouter(t, session.NewStore(session.Options{}))
	busy := createSession(t, h)
	other := createSession(t, h)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 20 {
			w := postJSON(t, h, "/calculator/sessions/"+busy.ID+"/keys", keysBody(MaxKeysPerRequest))
			if w.Code != http.StatusOK {
				t.Errorf("busy session press: status %d", w.Code)
				return
			}
		}
	}()

	w := press(t, h, other.ID, `{"keys":["4","+","2","="]}`, http.StatusOK)
	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.State.Display != "6" {
		t.Fatalf("expected display 6, got %q", resp.State.Display)
	}

	<-done
}
