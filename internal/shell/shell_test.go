package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kgrank/kgrank/pkg/ranking"
)

const shellDump = `<http://x/Neil_Armstrong> <http://x/label> "Neil Armstrong astronaut moon landing"@en .
<http://x/Neil_Armstrong> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://x/Astronaut> .
<http://x/Apollo_11> <http://x/crew> <http://x/Neil_Armstrong> .
<http://x/Buzz_Aldrin> <http://x/label> "Buzz Aldrin astronaut moon walker"@en .
<http://x/Buzz_Aldrin> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://x/Astronaut> .
<http://x/Apollo_11> <http://x/crew> <http://x/Buzz_Aldrin> .
<http://x/Merlin> <http://x/label> "Merlin the court wizard"@en .
<http://x/Merlin> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://x/Wizard> .
`

const shellSample = `topic: astronaut moon
relevant:
  - http://x/Neil_Armstrong
  - http://x/Buzz_Aldrin
not_relevant:
  - http://x/Merlin
examples: 1
`

func writeShellFixtures(t *testing.T) (dumpFile, sampleFile string) {
	t.Helper()
	dir := t.TempDir()
	dumpFile = filepath.Join(dir, "dump.nq")
	sampleFile = filepath.Join(dir, "astronauts.yml")
	if err := os.WriteFile(dumpFile, []byte(shellDump), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(sampleFile, []byte(shellSample), 0o644); err != nil {
		t.Fatal(err)
	}
	return dumpFile, sampleFile
}

func runScript(t *testing.T, sh *Shell, script string) string {
	t.Helper()
	var out bytes.Buffer
	if err := sh.Run(context.Background(), strings.NewReader(script), &out); err != nil {
		t.Fatalf("shell run failed: %v", err)
	}
	return out.String()
}

func TestShellLoadSampleRank(t *testing.T) {
	t.Parallel()

	dumpFile, sampleFile := writeShellFixtures(t)
	sh := New(ranking.DefaultConfig())

	script := "load " + dumpFile + "\nsample " + sampleFile + "\nrank\nexit\n"
	out := runScript(t, sh, script)

	if !strings.Contains(out, "loaded 8 triples") {
		t.Fatalf("load feedback missing:\n%s", out)
	}
	if !strings.Contains(out, "topic: astronaut moon") {
		t.Fatalf("sample feedback missing:\n%s", out)
	}
	for _, section := range []string{"--- text ---", "--- examples ---", "--- combined ---"} {
		if !strings.Contains(out, section) {
			t.Fatalf("missing %s section:\n%s", section, out)
		}
	}
	// Aldrin is the remaining relevant entity, Merlin the distractor
	if !strings.Contains(out, "[OK]") || !strings.Contains(out, "[NO]") {
		t.Fatalf("relevance markers missing:\n%s", out)
	}
}

func TestShellShowExpandsBareNames(t *testing.T) {
	t.Parallel()

	sh := New(ranking.DefaultConfig())
	out := runScript(t, sh, "show Berlin\nexit\n")
	if !strings.Contains(out, "no triples for http://dbpedia.org/resource/Berlin") {
		t.Fatalf("bare name not expanded:\n%s", out)
	}
}

func TestShellErrors(t *testing.T) {
	t.Parallel()

	sh := New(ranking.DefaultConfig())
	out := runScript(t, sh, "rank\nwibble\nload\nexit\n")

	if !strings.Contains(out, "no sample loaded") {
		t.Fatalf("rank without sample not rejected:\n%s", out)
	}
	if !strings.Contains(out, `unknown command "wibble"`) {
		t.Fatalf("unknown command not reported:\n%s", out)
	}
	if !strings.Contains(out, "usage: load <path>") {
		t.Fatalf("load without path not rejected:\n%s", out)
	}
}
