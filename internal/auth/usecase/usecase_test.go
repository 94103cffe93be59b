package usecase

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
	"github.com/ademolaidowu/gezapay/internal/pkg/clock"
	"github.com/ademolaidowu/gezapay/internal/pkg/cryptor"
	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
	"github.com/ademolaidowu/gezapay/internal/pkg/instrument"
	"github.com/ademolaidowu/gezapay/internal/pkg/jwt"
	"github.com/ademolaidowu/gezapay/internal/pkg/otp"
	"github.com/ademolaidowu/gezapay/internal/pkg/validator"
)

// --- fakes ---

type fakeConfig struct{}

func (fakeConfig) Close() error                   { return nil }
func (fakeConfig) GetString(string) string        { return "" }
func (fakeConfig) GetBool(string) bool            { return false }
func (fakeConfig) GetInt(string) int              { return 0 }
func (fakeConfig) GetInt32(string) int32          { return 0 }
func (fakeConfig) GetInt64(string) int64          { return 0 }
func (fakeConfig) GetUint(string) uint            { return 0 }
func (fakeConfig) GetFloat64(string) float64      { return 0 }
func (fakeConfig) GetSecond(string) time.Duration { return 0 }
func (fakeConfig) GetMinute(string) time.Duration { return 0 }
func (fakeConfig) GetHour(string) time.Duration   { return 0 }

func (fakeConfig) GetDay(key string) time.Duration {
	if key == "modules.auth.refresh_token_ttl_days" {
		return 30 * 24 * time.Hour
	}
	return 0
}

func (fakeConfig) GetArray(string) []string        { return nil }
func (fakeConfig) GetMap(string) map[string]string { return nil }
func (fakeConfig) GetBinary(string) []byte         { return nil }

type fakeHash struct{ prefix string }

func (f fakeHash) Hash(plaintext string) ([]byte, error) {
	return []byte(f.prefix + plaintext), nil
}

func (f fakeHash) Verify(hashed, plaintext string) bool {
	return hashed == f.prefix+plaintext
}

type seqNumberID struct{ n int64 }

func (s *seqNumberID) Generate() int64 {
	s.n++
	return s.n
}

type seqStringID struct {
	prefix string
	n      int
}

func (s *seqStringID) Generate() string {
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}

// hexStringID yields 64-char lowercase hex strings, like object IDs.
type hexStringID struct{ n int }

func (s *hexStringID) Generate() string {
	s.n++
	return fmt.Sprintf("%064x", s.n)
}

type fakeJWT struct{}

func (fakeJWT) Generate(uid int64, email string) (string, error) {
	return fmt.Sprintf("access-%d-%s", uid, email), nil
}

func (fakeJWT) Verify(string) (jwt.Claims, error) { return jwt.Claims{}, nil }

type fakeMessaging struct {
	otpEvents        []OTPIssuedEvent
	registeredEvents []UserRegisteredEvent
	publishErr       error
}

func (f *fakeMessaging) PublishOTPIssued(_ context.Context, msg OTPIssuedEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.otpEvents = append(f.otpEvents, msg)
	return nil
}

func (f *fakeMessaging) PublishUserRegistered(_ context.Context, msg UserRegisteredEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.registeredEvents = append(f.registeredEvents, msg)
	return nil
}

// fakeRepo is an in-memory repoDB with the same row semantics as the SQL
// layer: append-only code ledger, compare-and-swap flips, upserts. The mutex
// mirrors the database's serialization so concurrent usecase calls are safe.
type fakeRepo struct {
	mu       sync.Mutex
	users    map[int64]entity.User
	profiles map[int64]entity.UserProfile
	secrets  map[int64]entity.OTPSecrets
	codes    []entity.OTPCode
	refresh  map[string]entity.RefreshToken

	verifyLose bool // force VerifyRegistration to lose the CAS
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[int64]entity.User),
		profiles: make(map[int64]entity.UserProfile),
		secrets:  make(map[int64]entity.OTPSecrets),
		refresh:  make(map[string]entity.RefreshToken),
	}
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	out := u
	return &out, nil
}

func (r *fakeRepo) GetOTPSecrets(_ context.Context, userID int64) (*entity.OTPSecrets, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.secrets[userID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	out := s
	return &out, nil
}

func (r *fakeRepo) GetLatestOTPCode(_ context.Context, userID int64, purpose entity.Purpose) (*entity.OTPCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []entity.OTPCode
	for _, c := range r.codes {
		if c.UserID == userID && c.Purpose == purpose {
			rows = append(rows, c)
		}
	}
	if len(rows) == 0 {
		return nil, goerror.ErrNotFound
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	out := rows[0]
	return &out, nil
}

func (r *fakeRepo) GetUserRefreshToken(_ context.Context, tokenHash string) (*entity.UserRefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.refresh[tokenHash]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	u, ok := r.users[rt.UserID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &entity.UserRefreshToken{
		UserID:          u.ID,
		UserEmail:       u.Email,
		UserIsConfirmed: u.IsConfirmed,
		UserIsActive:    u.IsActive,
		RefreshID:       rt.ID,
		Revoked:         rt.Revoked,
		ExpiresAt:       rt.ExpiresAt,
	}, nil
}

func (r *fakeRepo) CreateOTPCode(_ context.Context, in entity.OTPCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codes = append(r.codes, in)
	return nil
}

func (r *fakeRepo) CreateRefreshToken(_ context.Context, in entity.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refresh[in.TokenHash] = in
	return nil
}

func (r *fakeRepo) UpsertOTPSecrets(_ context.Context, in entity.OTPSecrets) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.secrets[in.UserID] = in
	return nil
}

func (r *fakeRepo) RotateOTPSecret(_ context.Context, userID int64, purpose entity.Purpose, ciphertext []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.secrets[userID]
	if !ok {
		return goerror.ErrNotFound
	}
	s.SetSecret(purpose, ciphertext)
	r.secrets[userID] = s
	return nil
}

func (r *fakeRepo) DeleteOTPSecrets(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.secrets, userID)
	return nil
}

func (r *fakeRepo) UpdateUserProfile(_ context.Context, in entity.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[in.UserID]; !ok {
		return goerror.ErrNotFound
	}
	r.profiles[in.UserID] = in
	return nil
}

func (r *fakeRepo) RevokeRefreshToken(_ context.Context, tokenHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.refresh[tokenHash]
	if !ok || rt.Revoked {
		return false, nil
	}
	rt.Revoked = true
	r.refresh[tokenHash] = rt
	return true, nil
}

func (r *fakeRepo) RevokeAllRefreshTokens(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, rt := range r.refresh {
		if rt.UserID == userID && !rt.Revoked {
			rt.Revoked = true
			r.refresh[k] = rt
		}
	}
	return nil
}

func (r *fakeRepo) MarkOTPCodeVerified(_ context.Context, codeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.markVerifiedLocked(codeID), nil
}

func (r *fakeRepo) markVerifiedLocked(codeID int64) bool {
	for i := range r.codes {
		if r.codes[i].ID == codeID {
			if r.codes[i].IsVerified {
				return false
			}
			r.codes[i].IsVerified = true
			return true
		}
	}
	return false
}

func (r *fakeRepo) CreateRegistration(_ context.Context, in entity.NewRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == in.User.Email {
			return goerror.ErrConflict
		}
	}
	r.users[in.User.ID] = in.User
	r.profiles[in.Profile.UserID] = in.Profile
	r.secrets[in.Secrets.UserID] = in.Secrets
	return nil
}

func (r *fakeRepo) VerifyRegistration(_ context.Context, in entity.VerifyRegistration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.verifyLose {
		return false, nil
	}
	if !r.markVerifiedLocked(in.CodeID) {
		return false, nil
	}
	u, ok := r.users[in.UserID]
	if !ok {
		return false, goerror.ErrNotFound
	}
	u.IsConfirmed = true
	u.IsActive = true
	r.users[in.UserID] = u
	return true, nil
}

// --- harness ---

type fixture struct {
	uc    *Usecase
	repo  *fakeRepo
	msg   *fakeMessaging
	clock *clock.Static
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	m, err := model.NewModelFromString(`
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`)
	if err != nil {
		t.Fatalf("NewModelFromString() error = %v", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	if _, err := enforcer.AddPolicy("admin", "auth:secrets", "*"); err != nil {
		t.Fatalf("AddPolicy() error = %v", err)
	}
	if _, err := enforcer.AddGroupingPolicy("900", "admin"); err != nil {
		t.Fatalf("AddGroupingPolicy() error = %v", err)
	}

	repo := newFakeRepo()
	msg := &fakeMessaging{}
	clk := &clock.Static{T: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}

	uc := New(Dependency{
		RepoDB:        repo,
		RepoMessaging: msg,
		Validator:     v,
		Config:        fakeConfig{},
		HMAC:          fakeHash{prefix: "hmac:"},
		Password:      fakeHash{prefix: "pw:"},
		Encryptor:     cryptor.NewAESGCM(cryptor.StaticKeyProvider{KeyBytes: bytes.Repeat([]byte{0x01}, 32)}),
		UID:           &seqNumberID{},
		UUID:          &seqStringID{prefix: "event"},
		OID:           &hexStringID{},
		Totp:          otp.NewTOTP(300, 0),
		Clock:         clk,
		JWT:           fakeJWT{},
		Instrument:    instrument.NewNoop(),
		Enforcer:      enforcer,
	})

	return &fixture{uc: uc, repo: repo, msg: msg, clock: clk}
}

// authCtx returns a context carrying claims for userID, as the JWT middleware
// would set them.
func authCtx(userID int64, email string) context.Context {
	clm := jwt.Claims{UserID: userID, UserEmail: email}
	clm.Subject = strconv.FormatInt(userID, 10)
	return jwt.SetAuth(context.Background(), clm)
}

// register runs the full registration flow and returns the new user's ID and
// the issued confirmation code.
func (f *fixture) register(t *testing.T, email string) (int64, string) {
	t.Helper()

	err := f.uc.Register(context.Background(), RegisterInput{
		Email:           email,
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if len(f.msg.otpEvents) == 0 {
		t.Fatal("Register() published no otp issued event")
	}
	ev := f.msg.otpEvents[len(f.msg.otpEvents)-1]
	return ev.UserID, ev.Code
}

func assertBusinessError(t *testing.T, err error, code goerror.Code, msg string) {
	t.Helper()

	gerr, ok := err.(*goerror.Error)
	if !ok {
		t.Fatalf("error = %v (%T), want *goerror.Error", err, err)
	}
	if gerr.Code() != code {
		t.Fatalf("code = %v, want %v (err: %v)", gerr.Code(), code, gerr)
	}
	if msg != "" && gerr.Msg() != msg {
		t.Fatalf("msg = %q, want %q", gerr.Msg(), msg)
	}
}

func assertInvalidInput(t *testing.T, err error) {
	t.Helper()

	gerr, ok := err.(*goerror.Error)
	if !ok {
		t.Fatalf("error = %v (%T), want *goerror.Error", err, err)
	}
	if gerr.Code() != goerror.CodeInvalidInput {
		t.Fatalf("code = %v, want CodeInvalidInput", gerr.Code())
	}
}
