package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const aclModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

const aclPolicy = `p, root, *, produce
p, root, *, consume
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestAuthorizer(t *testing.T) {
	modelPath := writeFixture(t, "model.conf", aclModel)
	policyPath := writeFixture(t, "policy.csv", aclPolicy)

	a, err := New(modelPath, policyPath)
	require.NoError(t, err)

	require.NoError(t, a.Authorize("root", "*", "produce"))
	require.NoError(t, a.Authorize("root", "*", "consume"))

	err = a.Authorize("nobody", "*", "produce")
	require.Error(t, err)
}
