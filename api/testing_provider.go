// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

import (
	"bytes"
	"encoding/json"
	"encoding/pem"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/hashicorp/cap/nativeauth/internal/strutils"
	"github.com/stretchr/testify/require"
)

// Defaults used by the TestProvider.
const (
	TestDefaultClientId = "test-client-id"
	TestDefaultCode     = "12345678"
	TestDefaultTenantId = "test-tenant-id"
)

// TestUser is an account known to the TestProvider.
type TestUser struct {
	Username string

	// Password is empty for users that sign in with a one-time code.
	Password string

	// Attributes are returned as id_token claims.
	Attributes map[string]string
}

// authMethod is the challenge type the user signs in with.
func (u *TestUser) authMethod() string {
	if u.Password != "" {
		return ChallengeTypePassword
	}
	return ChallengeTypeOOB
}

const (
	flowSignIn        = "sign_in"
	flowSignUp        = "sign_up"
	flowResetPassword = "reset_password"

	stageStarted            = "started"
	stagePassword           = "password"
	stageCode               = "code"
	stageCredentialRequired = "credential_required"
	stageAttributes         = "attributes"
	stageNewPassword        = "new_password"
	stagePolling            = "polling"
	stageSignInReady        = "sign_in_ready"
)

// testFlow is the server side state a continuation token refers to.
type testFlow struct {
	family     string
	stage      string
	username   string
	password   string
	attributes map[string]string
	polls      int
}

// TestProvider is a local TLS server that implements every native
// authentication endpoint well enough to drive the sign-in, sign-up and reset
// password flows end to end in tests.
//
// Every successful step invalidates the continuation token it was given and
// hands out a new one.  A failed step (an incorrect code for example) leaves
// the token usable so the step can be retried.
type TestProvider struct {
	httpServer *httptest.Server
	caCert     string

	mu                       sync.Mutex
	clientId                 string
	expectedCode             string
	users                    map[string]*TestUser
	redirect                 bool
	omitContinuationToken    bool
	signUpChallengeType      string
	signUpRequirePassword    bool
	signUpRequiredAttributes []UserAttribute
	resetPollStatuses        []string
	resetPollInterval        int
	accessTokenExpiresIn     int
	omitRefreshToken         bool
	nextId                   int
	flows                    map[string]*testFlow
	refreshTokens            map[string]string
	requestCounts            map[string]int
	lastCorrelationId        string

	ecdsaPublicKey  string
	ecdsaPrivateKey string
	signer          jose.Signer

	t *testing.T
}

// StartTestProvider creates a disposable TestProvider listening on a random
// local port.  It's stopped automatically when the test completes.
//
// Supported options: WithTestPort
func StartTestProvider(t *testing.T, opt ...Option) *TestProvider {
	t.Helper()
	require := require.New(t)
	opts := getTestProviderOpts(opt...)

	p := &TestProvider{
		clientId:             TestDefaultClientId,
		expectedCode:         TestDefaultCode,
		users:                map[string]*TestUser{},
		signUpChallengeType:  ChallengeTypeOOB,
		resetPollStatuses:    []string{PollStatusInProgress, PollStatusSucceeded},
		resetPollInterval:    1,
		accessTokenExpiresIn: 3600,
		flows:                map[string]*testFlow{},
		refreshTokens:        map[string]string{},
		requestCounts:        map[string]int{},
		t:                    t,
	}
	p.ecdsaPublicKey, p.ecdsaPrivateKey = TestGenerateKeys(t)
	key, err := parseECPrivateKey(p.ecdsaPrivateKey)
	require.NoError(err)
	p.signer, err = newTestSigner(key)
	require.NoError(err)

	p.httpServer = httptestNewUnstartedServerWithPort(t, p, opts.withTestPort)
	p.httpServer.Config.ErrorLog = log.New(io.Discard, "", 0)
	p.httpServer.StartTLS()
	t.Cleanup(p.httpServer.Close)

	cert := p.httpServer.Certificate()

	var buf bytes.Buffer
	err = pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
	require.NoError(err)
	p.caCert = buf.String()

	return p
}

// Stop stops the running TestProvider.
func (p *TestProvider) Stop() {
	p.httpServer.Close()
}

// Addr returns the authority of the running TestProvider.
func (p *TestProvider) Addr() string { return p.httpServer.URL }

// CACert returns the pem-encoded CA certificate used by the TestProvider's
// HTTPS server.
func (p *TestProvider) CACert() string { return p.caCert }

// HTTPClient returns an http.Client that trusts the TestProvider.
func (p *TestProvider) HTTPClient() *http.Client { return p.httpServer.Client() }

// SigningKeys returns the test provider's pem-encoded keys used to sign
// id_tokens.
func (p *TestProvider) SigningKeys() (pub, priv string) {
	return p.ecdsaPublicKey, p.ecdsaPrivateKey
}

// SetClientId sets the client id every request must carry.
func (p *TestProvider) SetClientId(clientId string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clientId = clientId
}

// SetExpectedCode sets the one-time code every code challenge expects.
func (p *TestProvider) SetExpectedCode(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expectedCode = code
}

// AddUser adds (or replaces) an account.
func (p *TestProvider) AddUser(u TestUser) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[u.Username] = &u
}

// User returns a copy of the account for username.
func (p *TestProvider) User(username string) (TestUser, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[username]
	if !ok {
		return TestUser{}, false
	}
	return *u, true
}

// SetRedirect makes every start and challenge endpoint answer with the
// redirect challenge type.
func (p *TestProvider) SetRedirect(redirect bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.redirect = redirect
}

// OmitContinuationTokens makes the start and challenge endpoints answer
// without a continuation token.
func (p *TestProvider) OmitContinuationTokens(omit bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitContinuationToken = omit
}

// SetSignUpChallengeType sets the challenge type the sign-up challenge
// endpoint answers with first: oob (the default) or password.
func (p *TestProvider) SetSignUpChallengeType(challengeType string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signUpChallengeType = challengeType
}

// SetSignUpRequirements makes sign-up continue answer credential_required
// until a password was provided, and attributes_required until every
// attribute named has been provided.
func (p *TestProvider) SetSignUpRequirements(requirePassword bool, attributes []UserAttribute) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signUpRequirePassword = requirePassword
	p.signUpRequiredAttributes = attributes
}

// SetResetPollStatuses sets the statuses returned by successive
// poll_completion calls of a reset password flow.  The last status repeats.
func (p *TestProvider) SetResetPollStatuses(statuses ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetPollStatuses = statuses
}

// SetResetPollInterval sets the poll_interval (in seconds) returned by the
// reset password submit endpoint.
func (p *TestProvider) SetResetPollInterval(seconds int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetPollInterval = seconds
}

// SetAccessTokenExpiresIn sets the expires_in (in seconds) of issued access
// tokens.
func (p *TestProvider) SetAccessTokenExpiresIn(seconds int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accessTokenExpiresIn = seconds
}

// OmitRefreshTokens makes the token endpoint answer without a refresh token.
func (p *TestProvider) OmitRefreshTokens(omit bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitRefreshToken = omit
}

// RequestCount returns how many requests were received for the path.
func (p *TestProvider) RequestCount(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requestCounts[path]
}

// TotalRequests returns how many requests were received for every path.
func (p *TestProvider) TotalRequests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	var n int
	for _, c := range p.requestCounts {
		n += c
	}
	return n
}

// LastCorrelationId returns the client-request-id of the last request.
func (p *TestProvider) LastCorrelationId() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastCorrelationId
}

func (p *TestProvider) writeJSON(w http.ResponseWriter, out interface{}) error {
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

func (p *TestProvider) writeErrorResponse(w http.ResponseWriter, statusCode int, resp *ErrorResponse) {
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)
	resp.TraceId = p.newId("trace")
	w.WriteHeader(statusCode)
	_ = p.writeJSON(w, resp)
}

func (p *TestProvider) writeError(w http.ResponseWriter, code, subError, desc string) {
	p.writeErrorResponse(w, http.StatusBadRequest, &ErrorResponse{
		Code:        code,
		SubError:    subError,
		Description: desc,
	})
}

func (p *TestProvider) writeRedirect(w http.ResponseWriter) {
	_ = p.writeJSON(w, &ContinuationTokenResponse{ChallengeType: ChallengeTypeRedirect})
}

func (p *TestProvider) newId(prefix string) string {
	p.nextId++
	return prefix + "-" + strconv.Itoa(p.nextId)
}

// issueToken stores the flow under a fresh continuation token.
func (p *TestProvider) issueToken(f testFlow) string {
	tok := p.newId("ct")
	p.flows[tok] = &f
	return tok
}

// advance invalidates the old token and issues a new one for the flow at
// the stage.
func (p *TestProvider) advance(oldToken string, f *testFlow, stage string) string {
	delete(p.flows, oldToken)
	next := *f
	next.stage = stage
	return p.issueToken(next)
}

// lookupFlow returns the flow for the request's continuation token, writing
// an expired_token error when it's unknown or belongs to another flow
// family or stage.
func (p *TestProvider) lookupFlow(w http.ResponseWriter, req *http.Request, family string, stages ...string) (string, *testFlow, bool) {
	tok := req.PostForm.Get("continuation_token")
	f, ok := p.flows[tok]
	if !ok || f.family != family || (len(stages) > 0 && !strutils.StrListContains(stages, f.stage)) {
		p.writeError(w, "expired_token", "", "The continuation token is invalid or expired.")
		return "", nil, false
	}
	return tok, f, true
}

func (p *TestProvider) challengeTypes(req *http.Request) []string {
	return strings.Fields(req.PostForm.Get("challenge_type"))
}

func (p *TestProvider) codeSent(tok string) *ChallengeResponse {
	return &ChallengeResponse{
		ContinuationToken:    tok,
		ChallengeType:        ChallengeTypeOOB,
		BindingMethod:        "prompt",
		ChallengeChannel:     "email",
		ChallengeTargetLabel: "u***@example.com",
		CodeLength:           len(p.expectedCode),
		Interval:             300,
	}
}

// ServeHTTP implements the test provider's http.Handler.
func (p *TestProvider) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.t.Helper()

	w.Header().Set("Content-Type", "application/json")
	p.requestCounts[req.URL.Path]++

	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := req.ParseForm(); err != nil {
		p.writeError(w, "invalid_request", "", "unable to parse form")
		return
	}
	p.lastCorrelationId = req.Header.Get(HeaderClientRequestId)
	if p.lastCorrelationId == "" {
		p.writeError(w, "invalid_request", "", "missing client-request-id")
		return
	}
	w.Header().Set(HeaderClientRequestId, p.lastCorrelationId)
	if req.PostForm.Get("client_id") != p.clientId {
		p.writeError(w, "unauthorized_client", "", "unknown client_id")
		return
	}

	switch req.URL.Path {
	case PathSignInInitiate:
		p.signInInitiate(w, req)
	case PathSignInChallenge:
		p.signInChallenge(w, req)
	case PathToken:
		p.token(w, req)
	case PathSignUpStart:
		p.signUpStart(w, req)
	case PathSignUpChallenge:
		p.signUpChallenge(w, req)
	case PathSignUpContinue:
		p.signUpContinue(w, req)
	case PathResetPasswordStart:
		p.resetPasswordStart(w, req)
	case PathResetPasswordChallenge:
		p.resetPasswordChallenge(w, req)
	case PathResetPasswordContinue:
		p.resetPasswordContinue(w, req)
	case PathResetPasswordSubmit:
		p.resetPasswordSubmit(w, req)
	case PathResetPasswordPoll:
		p.resetPasswordPoll(w, req)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (p *TestProvider) signInInitiate(w http.ResponseWriter, req *http.Request) {
	if p.redirect {
		p.writeRedirect(w)
		return
	}
	username := req.PostForm.Get("username")
	if _, ok := p.users[username]; !ok {
		p.writeError(w, "user_not_found", "", "The user does not exist.")
		return
	}
	if p.omitContinuationToken {
		_ = p.writeJSON(w, &ContinuationTokenResponse{})
		return
	}
	tok := p.issueToken(testFlow{family: flowSignIn, stage: stageStarted, username: username})
	_ = p.writeJSON(w, &ContinuationTokenResponse{ContinuationToken: tok})
}

func (p *TestProvider) signInChallenge(w http.ResponseWriter, req *http.Request) {
	if p.redirect {
		p.writeRedirect(w)
		return
	}
	tok, f, ok := p.lookupFlow(w, req, flowSignIn, stageStarted, stageCode)
	if !ok {
		return
	}
	u := p.users[f.username]
	method := u.authMethod()
	if f.stage == stageCode {
		method = ChallengeTypeOOB
	}
	if !strutils.StrListContains(p.challengeTypes(req), method) {
		p.writeRedirect(w)
		return
	}
	var next string
	if !p.omitContinuationToken {
		switch method {
		case ChallengeTypePassword:
			next = p.advance(tok, f, stagePassword)
		default:
			next = p.advance(tok, f, stageCode)
		}
	}
	switch method {
	case ChallengeTypePassword:
		_ = p.writeJSON(w, &ChallengeResponse{ContinuationToken: next, ChallengeType: ChallengeTypePassword})
	default:
		_ = p.writeJSON(w, p.codeSent(next))
	}
}

func (p *TestProvider) token(w http.ResponseWriter, req *http.Request) {
	scope := req.PostForm.Get("scope")
	switch req.PostForm.Get("grant_type") {
	case GrantTypePassword:
		tok, f, ok := p.lookupFlow(w, req, flowSignIn, stagePassword)
		if !ok {
			return
		}
		if p.users[f.username].Password != req.PostForm.Get("password") {
			p.writeError(w, "invalid_grant", "", "The password is incorrect.")
			return
		}
		delete(p.flows, tok)
		p.writeTokens(w, f.username, scope)
	case GrantTypeOOB:
		tok, f, ok := p.lookupFlow(w, req, flowSignIn, stageCode)
		if !ok {
			return
		}
		if req.PostForm.Get("oob") != p.expectedCode {
			p.writeError(w, "invalid_grant", "invalid_oob_value", "The code is incorrect.")
			return
		}
		delete(p.flows, tok)
		p.writeTokens(w, f.username, scope)
	case GrantTypeContinuationToken:
		tok := req.PostForm.Get("continuation_token")
		f, ok := p.flows[tok]
		if !ok || f.stage != stageSignInReady {
			p.writeError(w, "expired_token", "", "The continuation token is invalid or expired.")
			return
		}
		if req.PostForm.Get("username") != f.username {
			p.writeError(w, "invalid_grant", "", "The username does not match.")
			return
		}
		delete(p.flows, tok)
		p.writeTokens(w, f.username, scope)
	case GrantTypeRefreshToken:
		rt := req.PostForm.Get("refresh_token")
		username, ok := p.refreshTokens[rt]
		if !ok {
			p.writeError(w, "invalid_grant", "", "The refresh token is invalid.")
			return
		}
		delete(p.refreshTokens, rt)
		p.writeTokens(w, username, scope)
	default:
		p.writeError(w, "unsupported_grant_type", "", "")
	}
}

func (p *TestProvider) writeTokens(w http.ResponseWriter, username, scope string) {
	u, ok := p.users[username]
	if !ok {
		p.writeError(w, "user_not_found", "", "The user does not exist.")
		return
	}
	idToken, err := p.signIdToken(u)
	if err != nil {
		p.writeErrorResponse(w, http.StatusInternalServerError, &ErrorResponse{Code: "server_error", Description: err.Error()})
		return
	}
	resp := &TokenResponse{
		TokenType:    "Bearer",
		Scope:        scope,
		ExpiresIn:    p.accessTokenExpiresIn,
		ExtExpiresIn: p.accessTokenExpiresIn,
		IdToken:      idToken,
		AccessToken:  p.newId("at"),
	}
	if !p.omitRefreshToken {
		resp.RefreshToken = p.newId("rt")
		p.refreshTokens[resp.RefreshToken] = username
	}
	_ = p.writeJSON(w, resp)
}

func (p *TestProvider) signIdToken(u *TestUser) (string, error) {
	now := time.Now()
	claims := jwt.Claims{
		Issuer:    p.Addr() + "/v2.0",
		Subject:   "sub-" + u.Username,
		Audience:  jwt.Audience{p.clientId},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Expiry:    jwt.NewNumericDate(now.Add(time.Hour)),
	}
	privateClaims := map[string]interface{}{
		"oid":                "oid-" + u.Username,
		"tid":                TestDefaultTenantId,
		"preferred_username": u.Username,
	}
	if name, ok := u.Attributes["displayName"]; ok {
		privateClaims["name"] = name
	}
	return jwt.Signed(p.signer).Claims(claims).Claims(privateClaims).Serialize()
}

func (p *TestProvider) signUpStart(w http.ResponseWriter, req *http.Request) {
	if p.redirect {
		p.writeRedirect(w)
		return
	}
	username := req.PostForm.Get("username")
	if _, ok := p.users[username]; ok {
		p.writeError(w, "user_already_exists", "", "The user already exists.")
		return
	}
	f := testFlow{
		family:     flowSignUp,
		stage:      stageStarted,
		username:   username,
		password:   req.PostForm.Get("password"),
		attributes: map[string]string{},
	}
	if raw := req.PostForm.Get("attributes"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &f.attributes); err != nil {
			p.writeError(w, "invalid_request", "", "attributes are not a JSON object")
			return
		}
	}
	if f.password != "" && len(f.password) < 8 {
		p.writeError(w, "invalid_grant", "password_too_weak", "The password is too weak.")
		return
	}
	if p.omitContinuationToken {
		_ = p.writeJSON(w, &ContinuationTokenResponse{})
		return
	}
	_ = p.writeJSON(w, &ContinuationTokenResponse{ContinuationToken: p.issueToken(f)})
}

func (p *TestProvider) signUpChallenge(w http.ResponseWriter, req *http.Request) {
	if p.redirect {
		p.writeRedirect(w)
		return
	}
	tok, f, ok := p.lookupFlow(w, req, flowSignUp, stageStarted, stageCode, stageCredentialRequired)
	if !ok {
		return
	}
	method := p.signUpChallengeType
	switch f.stage {
	case stageCode:
		method = ChallengeTypeOOB
	case stageCredentialRequired:
		method = ChallengeTypePassword
	}
	if !strutils.StrListContains(p.challengeTypes(req), method) {
		p.writeRedirect(w)
		return
	}
	var next string
	if !p.omitContinuationToken {
		switch method {
		case ChallengeTypePassword:
			next = p.advance(tok, f, stagePassword)
		default:
			next = p.advance(tok, f, stageCode)
		}
	}
	switch method {
	case ChallengeTypePassword:
		_ = p.writeJSON(w, &ChallengeResponse{ContinuationToken: next, ChallengeType: ChallengeTypePassword})
	default:
		_ = p.writeJSON(w, p.codeSent(next))
	}
}

func (p *TestProvider) signUpContinue(w http.ResponseWriter, req *http.Request) {
	var tok string
	var f *testFlow
	var ok bool
	switch req.PostForm.Get("grant_type") {
	case GrantTypeOOB:
		if tok, f, ok = p.lookupFlow(w, req, flowSignUp, stageCode); !ok {
			return
		}
		if req.PostForm.Get("oob") != p.expectedCode {
			p.writeError(w, "invalid_grant", "invalid_oob_value", "The code is incorrect.")
			return
		}
	case GrantTypePassword:
		if tok, f, ok = p.lookupFlow(w, req, flowSignUp, stagePassword); !ok {
			return
		}
		password := req.PostForm.Get("password")
		if len(password) < 8 {
			p.writeError(w, "invalid_grant", "password_too_weak", "The password is too weak.")
			return
		}
		f.password = password
	case GrantTypeAttributes:
		if tok, f, ok = p.lookupFlow(w, req, flowSignUp, stageAttributes); !ok {
			return
		}
		attrs := map[string]string{}
		if err := json.Unmarshal([]byte(req.PostForm.Get("attributes")), &attrs); err != nil {
			p.writeError(w, "invalid_request", "", "attributes are not a JSON object")
			return
		}
		var invalid []InvalidAttribute
		for name, value := range attrs {
			if strings.TrimSpace(value) == "" {
				invalid = append(invalid, InvalidAttribute{Name: name})
			}
		}
		if len(invalid) > 0 {
			p.writeErrorResponse(w, http.StatusBadRequest, &ErrorResponse{
				Code:              "invalid_grant",
				SubError:          "attribute_validation_failed",
				Description:       "Attribute validation failed.",
				ContinuationToken: tok,
				InvalidAttributes: invalid,
			})
			return
		}
		for name, value := range attrs {
			f.attributes[name] = value
		}
	default:
		p.writeError(w, "unsupported_grant_type", "", "")
		return
	}

	if p.signUpRequirePassword && f.password == "" {
		p.writeErrorResponse(w, http.StatusBadRequest, &ErrorResponse{
			Code:              "credential_required",
			Description:       "A password is required.",
			ContinuationToken: p.advance(tok, f, stageCredentialRequired),
		})
		return
	}
	var missing []UserAttribute
	for _, a := range p.signUpRequiredAttributes {
		if _, ok := f.attributes[a.Name]; !ok {
			missing = append(missing, a)
		}
	}
	if len(missing) > 0 {
		p.writeErrorResponse(w, http.StatusBadRequest, &ErrorResponse{
			Code:               "attributes_required",
			Description:        "User attributes are required.",
			ContinuationToken:  p.advance(tok, f, stageAttributes),
			RequiredAttributes: missing,
		})
		return
	}

	p.users[f.username] = &TestUser{
		Username:   f.username,
		Password:   f.password,
		Attributes: f.attributes,
	}
	next := p.advance(tok, f, stageSignInReady)
	p.flows[next].family = flowSignIn
	_ = p.writeJSON(w, &ContinuationTokenResponse{ContinuationToken: next})
}

func (p *TestProvider) resetPasswordStart(w http.ResponseWriter, req *http.Request) {
	if p.redirect {
		p.writeRedirect(w)
		return
	}
	username := req.PostForm.Get("username")
	if _, ok := p.users[username]; !ok {
		p.writeError(w, "user_not_found", "", "The user does not exist.")
		return
	}
	if p.omitContinuationToken {
		_ = p.writeJSON(w, &ContinuationTokenResponse{})
		return
	}
	tok := p.issueToken(testFlow{family: flowResetPassword, stage: stageStarted, username: username})
	_ = p.writeJSON(w, &ContinuationTokenResponse{ContinuationToken: tok})
}

func (p *TestProvider) resetPasswordChallenge(w http.ResponseWriter, req *http.Request) {
	if p.redirect {
		p.writeRedirect(w)
		return
	}
	tok, f, ok := p.lookupFlow(w, req, flowResetPassword, stageStarted, stageCode)
	if !ok {
		return
	}
	if !strutils.StrListContains(p.challengeTypes(req), ChallengeTypeOOB) {
		p.writeRedirect(w)
		return
	}
	var next string
	if !p.omitContinuationToken {
		next = p.advance(tok, f, stageCode)
	}
	_ = p.writeJSON(w, p.codeSent(next))
}

func (p *TestProvider) resetPasswordContinue(w http.ResponseWriter, req *http.Request) {
	tok, f, ok := p.lookupFlow(w, req, flowResetPassword, stageCode)
	if !ok {
		return
	}
	if req.PostForm.Get("grant_type") != GrantTypeOOB {
		p.writeError(w, "unsupported_grant_type", "", "")
		return
	}
	if req.PostForm.Get("oob") != p.expectedCode {
		p.writeError(w, "invalid_grant", "invalid_oob_value", "The code is incorrect.")
		return
	}
	_ = p.writeJSON(w, &ContinuationTokenResponse{ContinuationToken: p.advance(tok, f, stageNewPassword)})
}

func (p *TestProvider) resetPasswordSubmit(w http.ResponseWriter, req *http.Request) {
	tok, f, ok := p.lookupFlow(w, req, flowResetPassword, stageNewPassword)
	if !ok {
		return
	}
	password := req.PostForm.Get("new_password")
	if len(password) < 8 {
		p.writeError(w, "invalid_grant", "password_too_weak", "The password is too weak.")
		return
	}
	f.password = password
	_ = p.writeJSON(w, &ResetPasswordSubmitResponse{
		ContinuationToken: p.advance(tok, f, stagePolling),
		PollInterval:      p.resetPollInterval,
	})
}

func (p *TestProvider) resetPasswordPoll(w http.ResponseWriter, req *http.Request) {
	tok, f, ok := p.lookupFlow(w, req, flowResetPassword, stagePolling)
	if !ok {
		return
	}
	status := PollStatusSucceeded
	if n := len(p.resetPollStatuses); n > 0 {
		status = p.resetPollStatuses[min(f.polls, n-1)]
	}
	f.polls++
	switch status {
	case PollStatusSucceeded:
		p.users[f.username].Password = f.password
		next := p.advance(tok, f, stageSignInReady)
		p.flows[next].family = flowSignIn
		_ = p.writeJSON(w, &PollCompletionResponse{Status: status, ContinuationToken: next})
	case PollStatusFailed:
		delete(p.flows, tok)
		_ = p.writeJSON(w, &PollCompletionResponse{Status: status})
	default:
		_ = p.writeJSON(w, &PollCompletionResponse{Status: status})
	}
}

// testProviderOptions is the set of available options for StartTestProvider
type testProviderOptions struct {
	withTestPort int
}

func testProviderDefaults() testProviderOptions {
	return testProviderOptions{}
}

func getTestProviderOpts(opt ...Option) testProviderOptions {
	opts := testProviderDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithTestPort provides an optional port for the TestProvider to listen on.
func WithTestPort(port int) Option {
	return func(o interface{}) {
		if o, ok := o.(*testProviderOptions); ok {
			o.withTestPort = port
		}
	}
}

// httptestNewUnstartedServerWithPort is roughly the same as
// httptest.NewUnstartedServer() but allows the caller to explicitly choose the
// port if desired.  A zero port picks a random one.
func httptestNewUnstartedServerWithPort(t *testing.T, handler http.Handler, port int) *httptest.Server {
	t.Helper()
	require := require.New(t)

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	l, err := net.Listen("tcp", addr)
	require.NoError(err)

	return &httptest.Server{
		Listener: l,
		Config:   &http.Server{Handler: handler},
	}
}
