package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keymaster/keymaster/internal/config"
	"github.com/keymaster/keymaster/internal/crypto"
	"github.com/keymaster/keymaster/internal/logger"
	"github.com/keymaster/keymaster/internal/store"
	"github.com/keymaster/keymaster/models"
)

// fakeUserPassRepo is an in-memory UserPassRepository recording every write.
type fakeUserPassRepo struct {
	records   map[int64]models.UserPass
	updates   []models.UserPassUpdate
	created   []models.UserPass
	updateErr error
}

func newFakeUserPassRepo() *fakeUserPassRepo {
	return &fakeUserPassRepo{records: make(map[int64]models.UserPass)}
}

func (f *fakeUserPassRepo) GetByUserID(_ context.Context, userID int64) (models.UserPass, error) {
	rec, ok := f.records[userID]
	if !ok {
		return models.UserPass{}, store.ErrUserPassNotFound
	}
	return rec, nil
}

func (f *fakeUserPassRepo) Create(_ context.Context, pass models.UserPass) error {
	f.created = append(f.created, pass)
	f.records[pass.UserID] = pass
	return nil
}

func (f *fakeUserPassRepo) UpdateMasterPassByID(_ context.Context, userID int64, update models.UserPassUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	rec, ok := f.records[userID]
	if !ok {
		return store.ErrUserPassNotFound
	}

	if update.MPass != nil {
		rec.MPass = *update.MPass
	}
	if update.MKey != nil {
		rec.MKey = *update.MKey
	}
	if update.LastUpdateMPass != nil {
		rec.LastUpdateMPass = *update.LastUpdateMPass
	}
	if update.IsChangedPass != nil {
		rec.IsChangedPass = *update.IsChangedPass
	}

	f.records[userID] = rec
	f.updates = append(f.updates, update)
	return nil
}

// fakeConfigRepo is an in-memory ConfigRepository counting reads so tests
// can assert which paths never touch the configuration.
type fakeConfigRepo struct {
	hash       string
	hasHash    bool
	lastUpdate int64

	reads     int
	setHashes []string
	setStamps []int64
}

func (f *fakeConfigRepo) GetMasterPwdHash(context.Context) (string, error) {
	f.reads++
	if !f.hasHash {
		return "", store.ErrParameterNotFound
	}
	return f.hash, nil
}

func (f *fakeConfigRepo) SetMasterPwdHash(_ context.Context, hash string) error {
	f.hash, f.hasHash = hash, true
	f.setHashes = append(f.setHashes, hash)
	return nil
}

func (f *fakeConfigRepo) GetLastUpdateMPass(context.Context) (int64, error) {
	f.reads++
	return f.lastUpdate, nil
}

func (f *fakeConfigRepo) SetLastUpdateMPass(_ context.Context, ts int64) error {
	f.setStamps = append(f.setStamps, ts)
	return nil
}

const (
	testSalt       = "server-salt"
	testMasterPass = "a_master_pass"
	testLogin      = "john"
	testLoginPass  = "login-pass"
	testUserID     = int64(42)
)

func newTestService(t *testing.T) (*MasterPassService, *fakeUserPassRepo, *fakeConfigRepo) {
	t.Helper()

	users := newFakeUserPassRepo()
	cfg := &fakeConfigRepo{}
	svc := NewMasterPassService(users, cfg, config.App{PasswordSalt: testSalt}, logger.Nop())
	return svc, users, cfg
}

// deriveRecord produces a valid record for login/password, as written at
// registration time.
func deriveRecord(t *testing.T, svc *MasterPassService, password string) models.UserPass {
	t.Helper()

	rec, err := svc.Create([]byte(testMasterPass), testLogin, password)
	require.NoError(t, err)
	rec.UserID = testUserID
	return rec
}

func setGlobalHash(t *testing.T, cfg *fakeConfigRepo, masterPass string) {
	t.Helper()

	hash, err := crypto.HashKey(masterPass)
	require.NoError(t, err)
	cfg.hash, cfg.hasHash = hash, true
}

func TestLoad_Ok(t *testing.T) {
	svc, _, cfg := newTestService(t)
	setGlobalHash(t, cfg, testMasterPass)

	rec := deriveRecord(t, svc, testLoginPass)
	rec.LastUpdateMPass = 10

	res, err := svc.Load(context.Background(), models.UserLogin{Login: testLogin, LoginPass: testLoginPass}, rec)

	require.NoError(t, err)
	assert.Equal(t, StatusOk, res.Status)
	assert.True(t, bytes.Equal(res.ClearMasterPass, []byte(testMasterPass)))
}

func TestLoad_ChangedWhenGlobalRotatedAfterRecord(t *testing.T) {
	svc, _, cfg := newTestService(t)
	setGlobalHash(t, cfg, testMasterPass)
	cfg.lastUpdate = 100

	rec := deriveRecord(t, svc, testLoginPass)
	rec.LastUpdateMPass = 0

	res, err := svc.Load(context.Background(), models.UserLogin{Login: testLogin, LoginPass: testLoginPass}, rec)

	require.NoError(t, err)
	assert.Equal(t, StatusChanged, res.Status)
	assert.Nil(t, res.ClearMasterPass)
}

func TestLoad_CheckOldWhenPassChangedAndNoUnlockPass(t *testing.T) {
	svc, _, cfg := newTestService(t)
	setGlobalHash(t, cfg, testMasterPass)

	rec := deriveRecord(t, svc, testLoginPass)
	rec.LastUpdateMPass = 10
	rec.IsChangedPass = true

	res, err := svc.Load(context.Background(), models.UserLogin{Login: testLogin, LoginPass: testLoginPass}, rec)

	require.NoError(t, err)
	assert.Equal(t, StatusCheckOld, res.Status)
}

func TestLoad_UnlockPassOverridesLoginPass(t *testing.T) {
	svc, _, cfg := newTestService(t)
	setGlobalHash(t, cfg, testMasterPass)

	// Record derived from the old password; the login password changed.
	rec := deriveRecord(t, svc, "old-login-pass")
	rec.LastUpdateMPass = 10
	rec.IsChangedPass = true

	login := models.UserLogin{Login: testLogin, LoginPass: "new-login-pass", UnlockPass: "old-login-pass"}
	res, err := svc.Load(context.Background(), login, rec)

	require.NoError(t, err)
	assert.Equal(t, StatusOk, res.Status)
	assert.True(t, bytes.Equal(res.ClearMasterPass, []byte(testMasterPass)))
}

func TestLoad_InvalidWhenHashMismatch(t *testing.T) {
	svc, _, cfg := newTestService(t)
	setGlobalHash(t, cfg, "a_different_master_pass")

	rec := deriveRecord(t, svc, testLoginPass)
	rec.LastUpdateMPass = 10

	res, err := svc.Load(context.Background(), models.UserLogin{Login: testLogin, LoginPass: testLoginPass}, rec)

	require.NoError(t, err)
	assert.Equal(t, StatusInvalid, res.Status)
	assert.Nil(t, res.ClearMasterPass)
}

func TestLoad_NotSetWhenNoGlobalHash(t *testing.T) {
	svc, _, _ := newTestService(t)

	rec := deriveRecord(t, svc, testLoginPass)
	rec.LastUpdateMPass = 10

	res, err := svc.Load(context.Background(), models.UserLogin{Login: testLogin, LoginPass: testLoginPass}, rec)

	require.NoError(t, err)
	assert.Equal(t, StatusNotSet, res.Status)
}

func TestLoad_NotSetWhenRecordEmpty(t *testing.T) {
	svc, _, cfg := newTestService(t)
	setGlobalHash(t, cfg, testMasterPass)
	cfg.reads = 0

	res, err := svc.Load(context.Background(), models.UserLogin{Login: testLogin, LoginPass: testLoginPass}, models.UserPass{})

	require.NoError(t, err)
	assert.Equal(t, StatusNotSet, res.Status)
	assert.Zero(t, cfg.reads, "an empty record must not touch the configuration")
}

func TestLoad_NotSetWhenLoginEmpty(t *testing.T) {
	svc, _, cfg := newTestService(t)
	setGlobalHash(t, cfg, testMasterPass)

	rec := deriveRecord(t, svc, testLoginPass)

	for name, login := range map[string]models.UserLogin{
		"no login name": {LoginPass: testLoginPass},
		"no password":   {Login: testLogin},
	} {
		res, err := svc.Load(context.Background(), login, rec)
		require.NoError(t, err, name)
		assert.Equal(t, StatusNotSet, res.Status, name)
	}
}

func TestLoad_CryptoFailureMapsToCheckOld(t *testing.T) {
	svc, _, cfg := newTestService(t)
	setGlobalHash(t, cfg, testMasterPass)

	// Wrong password: the material does not decrypt.
	rec := deriveRecord(t, svc, testLoginPass)
	rec.LastUpdateMPass = 10

	res, err := svc.Load(context.Background(), models.UserLogin{Login: testLogin, LoginPass: "wrong-pass"}, rec)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckOld, res.Status)

	// Outright corrupt key material maps the same way.
	rec.MKey = "corrupt key material"
	res, err = svc.Load(context.Background(), models.UserLogin{Login: testLogin, LoginPass: testLoginPass}, rec)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckOld, res.Status)
}

func TestLoadByUserID(t *testing.T) {
	svc, users, cfg := newTestService(t)
	setGlobalHash(t, cfg, testMasterPass)

	// Unknown user: nothing to check.
	res, err := svc.LoadByUserID(context.Background(), models.UserLogin{Login: testLogin, LoginPass: testLoginPass}, testUserID)
	require.NoError(t, err)
	assert.Equal(t, StatusNotSet, res.Status)

	// Stored record: full load.
	rec := deriveRecord(t, svc, testLoginPass)
	rec.LastUpdateMPass = 10
	users.records[testUserID] = rec

	res, err = svc.LoadByUserID(context.Background(), models.UserLogin{Login: testLogin, LoginPass: testLoginPass}, testUserID)
	require.NoError(t, err)
	assert.Equal(t, StatusOk, res.Status)
}

func TestUpdateFromOldPass_RederivesAndPersists(t *testing.T) {
	svc, users, cfg := newTestService(t)
	setGlobalHash(t, cfg, testMasterPass)

	rec := deriveRecord(t, svc, "old-login-pass")
	rec.IsChangedPass = true
	users.records[testUserID] = rec

	login := models.UserLogin{Login: testLogin, LoginPass: "new-login-pass"}
	res, err := svc.UpdateFromOldPass(context.Background(), "old-login-pass", login, rec)

	require.NoError(t, err)
	assert.Equal(t, StatusOk, res.Status)
	assert.True(t, bytes.Equal(res.ClearMasterPass, []byte(testMasterPass)))
	require.Len(t, users.updates, 1)

	// The persisted record now opens under the new login password.
	fresh := users.records[testUserID]
	assert.False(t, fresh.IsChangedPass)
	check, err := svc.Load(context.Background(), login, fresh)
	require.NoError(t, err)
	assert.Equal(t, StatusOk, check.Status)
}

func TestUpdateFromOldPass_WrongOldPassword(t *testing.T) {
	svc, users, cfg := newTestService(t)
	setGlobalHash(t, cfg, testMasterPass)

	rec := deriveRecord(t, svc, "old-login-pass")
	users.records[testUserID] = rec

	login := models.UserLogin{Login: testLogin, LoginPass: "new-login-pass"}
	res, err := svc.UpdateFromOldPass(context.Background(), "not-the-old-pass", login, rec)

	require.NoError(t, err)
	assert.Equal(t, StatusInvalid, res.Status)
	assert.Empty(t, users.updates, "a failed validation must not mutate the record")
}

func TestUpdateFromOldPass_HashMismatch(t *testing.T) {
	svc, users, cfg := newTestService(t)
	setGlobalHash(t, cfg, "a_rotated_master_pass")

	rec := deriveRecord(t, svc, "old-login-pass")
	users.records[testUserID] = rec

	login := models.UserLogin{Login: testLogin, LoginPass: "new-login-pass"}
	res, err := svc.UpdateFromOldPass(context.Background(), "old-login-pass", login, rec)

	require.NoError(t, err)
	assert.Equal(t, StatusInvalid, res.Status)
	assert.Empty(t, users.updates)
}

func TestUpdateOnLogin_FirstTimeSetupRecordsGlobalHash(t *testing.T) {
	svc, users, cfg := newTestService(t)

	login := models.UserLogin{Login: testLogin, LoginPass: testLoginPass}
	res, err := svc.UpdateOnLogin(context.Background(), []byte(testMasterPass), login, testUserID)

	require.NoError(t, err)
	assert.Equal(t, StatusOk, res.Status)

	require.Len(t, cfg.setHashes, 1)
	assert.True(t, crypto.CheckHashKey(testMasterPass, cfg.setHashes[0]))

	// No prior record: one was created.
	require.Len(t, users.created, 1)
	assert.Equal(t, testUserID, users.created[0].UserID)
}

func TestUpdateOnLogin_ExistingRecordUpdated(t *testing.T) {
	svc, users, cfg := newTestService(t)
	setGlobalHash(t, cfg, testMasterPass)

	users.records[testUserID] = deriveRecord(t, svc, "stale-pass")

	login := models.UserLogin{Login: testLogin, LoginPass: testLoginPass}
	res, err := svc.UpdateOnLogin(context.Background(), []byte(testMasterPass), login, testUserID)

	require.NoError(t, err)
	assert.Equal(t, StatusOk, res.Status)
	require.Len(t, users.updates, 1)
	assert.Empty(t, users.created)
	assert.Empty(t, cfg.setHashes, "an existing global hash must not be overwritten")

	check, err := svc.Load(context.Background(), login, users.records[testUserID])
	require.NoError(t, err)
	assert.Equal(t, StatusOk, check.Status)
}

func TestUpdateOnLogin_PersistenceFailureIsInternal(t *testing.T) {
	svc, users, cfg := newTestService(t)
	setGlobalHash(t, cfg, testMasterPass)
	users.records[testUserID] = deriveRecord(t, svc, testLoginPass)
	users.updateErr = assert.AnError

	login := models.UserLogin{Login: testLogin, LoginPass: testLoginPass}
	_, err := svc.UpdateOnLogin(context.Background(), []byte(testMasterPass), login, testUserID)

	require.ErrorIs(t, err, ErrInternal)
}

func TestCreate_ProducesPairedArtifacts(t *testing.T) {
	svc, _, _ := newTestService(t)

	rec, err := svc.Create([]byte(testMasterPass), testLogin, testLoginPass)

	require.NoError(t, err)
	assert.NotEmpty(t, rec.MPass)
	assert.NotEmpty(t, rec.MKey)
	assert.NotZero(t, rec.LastUpdateMPass)
	assert.LessOrEqual(t, len(rec.MPass), maxArtifactLen)
	assert.LessOrEqual(t, len(rec.MKey), maxArtifactLen)
}

func TestCreate_OversizedArtifactsRejected(t *testing.T) {
	svc, users, _ := newTestService(t)

	// A clear value this large inflates the encrypted blob past the
	// storage bound.
	huge := bytes.Repeat([]byte("x"), 2*maxArtifactLen)

	_, err := svc.Create(huge, testLogin, testLoginPass)

	require.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, users.created)
	assert.Empty(t, users.updates)
}

func TestCreate_EmptyInputs(t *testing.T) {
	svc, _, _ := newTestService(t)

	for name, args := range map[string][3]string{
		"no clear pass": {"", testLogin, testLoginPass},
		"no login":      {testMasterPass, "", testLoginPass},
		"no password":   {testMasterPass, testLogin, ""},
	} {
		_, err := svc.Create([]byte(args[0]), args[1], args[2])
		assert.ErrorIs(t, err, ErrInvalidDataProvided, name)
	}
}
