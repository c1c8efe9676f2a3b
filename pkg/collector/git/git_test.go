// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/NVIDIA/crashcap/pkg/measurement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSHA = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

func writeRepoFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, ".git", filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestResolve_NoRepository(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	md := Resolve(dir)
	assert.NotNil(t, md)
	assert.Empty(t, md)
}

func TestResolve_LooseRef(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "HEAD", "ref: refs/heads/main\n")
	writeRepoFile(t, root, "refs/heads/main", testSHA+"\n")

	md := Resolve(root)
	assert.Equal(t, Metadata{KeyCheckout: "refs/heads/main", KeySHA1: testSHA}, md)
	assert.Equal(t, "refs/heads/main", md.Checkout())
	assert.Equal(t, testSHA, md.SHA1())
}

func TestResolve_WalksUpward(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "HEAD", "ref: refs/heads/feature/x\n")
	writeRepoFile(t, root, "refs/heads/feature/x", testSHA)

	nested := filepath.Join(root, "cmd", "app", "internal")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	md := Resolve(nested)
	assert.Equal(t, "refs/heads/feature/x", md.Checkout())
	assert.Equal(t, testSHA, md.SHA1())
}

func TestResolve_PackedRefs(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "HEAD", "ref: refs/heads/main\n")
	writeRepoFile(t, root, "packed-refs", "# pack-refs with: peeled fully-peeled sorted\n"+
		testSHA+" refs/heads/main\n"+
		"1111111111111111111111111111111111111111 refs/tags/v1\n"+
		"^2222222222222222222222222222222222222222\n")

	md := Resolve(root)
	assert.Equal(t, "refs/heads/main", md.Checkout())
	assert.Equal(t, testSHA, md.SHA1())
}

func TestResolve_DetachedHead(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "HEAD", testSHA+"\n")

	md := Resolve(root)
	assert.Equal(t, Metadata{KeySHA1: testSHA}, md)
}

func TestResolve_MissingRefOmitsSHA(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "HEAD", "ref: refs/heads/unborn\n")

	md := Resolve(root)
	assert.Equal(t, "refs/heads/unborn", md.Checkout())
	assert.NotContains(t, md, KeySHA1)
}

func TestResolve_RefOutsideRepository(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "HEAD", "ref: ../../etc/passwd\n")

	md := Resolve(root)
	assert.Equal(t, "../../etc/passwd", md.Checkout())
	assert.NotContains(t, md, KeySHA1)
}

func TestResolve_MissingHeadKeepsConfig(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "config", "[core]\n\tbare = false\n")

	md := Resolve(root)
	assert.NotContains(t, md, KeyCheckout)
	assert.NotContains(t, md, KeySHA1)
	assert.Equal(t, map[string]string{"bare": "false"}, md["core"])
}

func TestResolve_ConfigSections(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "HEAD", "ref: refs/heads/main\n")
	writeRepoFile(t, root, "refs/heads/main", testSHA)
	writeRepoFile(t, root, "config", `[core]
	repositoryformatversion = 0
	filemode = true
[remote "origin"]
	url = https://github.com/NVIDIA/crashcap.git
	fetch = +refs/heads/*:refs/remotes/origin/*
[branch "main"]
	remote = origin
	merge = refs/heads/main
`)

	md := Resolve(root)
	require.Contains(t, md, `remote "origin"`)
	assert.Equal(t, "https://github.com/NVIDIA/crashcap.git", md[`remote "origin"`].(map[string]string)["url"])
	assert.Equal(t, "0", md["core"].(map[string]string)["repositoryformatversion"])
	assert.Equal(t, "origin", md[`branch "main"`].(map[string]string)["remote"])
	assert.Equal(t, "refs/heads/main", md.Checkout())
	assert.Equal(t, testSHA, md.SHA1())
}

func TestResolve_GitFileIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "HEAD", "ref: refs/heads/main\n")
	writeRepoFile(t, root, "refs/heads/main", testSHA)

	// a worktree-style .git file in a nested directory does not stop the walk
	nested := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, ".git"), []byte("gitdir: elsewhere"), 0o600))

	md := Resolve(nested)
	assert.Equal(t, testSHA, md.SHA1())
}

func TestCollector_Collect(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "HEAD", "ref: refs/heads/main\n")
	writeRepoFile(t, root, "refs/heads/main", testSHA)

	c := &Collector{WorkDir: root}
	m, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, measurement.TypeRepository, m.Type)
	assert.Equal(t, testSHA, m.Data[KeySHA1])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsSHA(t *testing.T) {
	assert.True(t, isSHA(testSHA))
	assert.False(t, isSHA("ref: refs/heads/main"))
	assert.False(t, isSHA(testSHA[:39]))
	assert.False(t, isSHA("4B825DC642CB6EB9A060E54BF8D69288FBEE4904"))
}
