package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"
	"go.viam.com/test"

	"github.com/aerialnav/ltstar/logging"
	"github.com/aerialnav/ltstar/motionplan"
	"github.com/aerialnav/ltstar/octree"
)

const (
	wallScene  = "../octree/testfiles/wall.json"
	emptyScene = "../octree/testfiles/empty.json"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := NewApp(&out, &errOut).Run(append([]string{"ltstar"}, args...))
	return out.String(), err
}

func TestPlanCommand(t *testing.T) {
	out, err := run(t, "--scene", emptyScene, "plan", "--start", "0,0,0", "--goal", "10,0,0", "--margin", "0.5",
		"--max-time", "30", "--request-id", "cli-1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "request cli-1: 2 waypoints")
	test.That(t, out, test.ShouldContainSubstring, "10.00, 0.00, 0.00")

	out, err = run(t, "--scene", wallScene, "plan", "--start", "0,0,0", "--goal", "10,0,0", "--margin", "0.5",
		"--max-time", "30", "--json")
	test.That(t, err, test.ShouldBeNil)
	var reply motionplan.Reply
	test.That(t, json.Unmarshal([]byte(out), &reply), test.ShouldBeNil)
	test.That(t, reply.Success, test.ShouldBeTrue)
	test.That(t, reply.WaypointAmount, test.ShouldBeGreaterThan, 2)
	test.That(t, reply.Waypoints[0].Position, test.ShouldResemble, r3.Vector{})

	out, err = run(t, "--scene", emptyScene, "plan", "--start", "0,0,0", "--goal", "20,0,0", "--margin", "0.5",
		"--max-time", "30")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, out, test.ShouldContainSubstring, "no path")

	_, err = run(t, "--scene", emptyScene, "plan", "--start", "0,0", "--goal", "10,0,0")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "bad start")

	_, err = run(t, "plan", "--start", "0,0,0", "--goal", "10,0,0")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no scene")
}

func TestPlanCommandWithConfig(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "plans.csv")
	scenePath, err := filepath.Abs(emptyScene)
	test.That(t, err, test.ShouldBeNil)
	cfgPath := filepath.Join(dir, "config.json")
	cfg := `{
		"scene": "` + scenePath + `",
		"planner": {"default_safety_margin": 0.5, "default_max_time_secs": 10, "yaw_mode": "zero"},
		"diagnostics": {"dataset": "cli", "csv_path": "` + csvPath + `"}
	}`
	test.That(t, os.WriteFile(cfgPath, []byte(cfg), 0o600), test.ShouldBeNil)

	out, err := run(t, "--config", cfgPath, "plan", "--start", "0,0,0", "--goal", "10,0,0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "2 waypoints")

	data, err := os.ReadFile(csvPath)
	test.That(t, err, test.ShouldBeNil)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	test.That(t, len(lines), test.ShouldEqual, 2)
	test.That(t, lines[1], test.ShouldContainSubstring, ",cli,")
}

func TestBatchCommand(t *testing.T) {
	reqs := []motionplan.Request{
		{Goal: r3.Vector{X: 10}, SafetyMargin: lo.ToPtr(0.5), MaxTimeSecs: lo.ToPtr(30), RequestID: "ok-1"},
		{Goal: r3.Vector{X: 10, Z: 5}, SafetyMargin: lo.ToPtr(0.5), MaxTimeSecs: lo.ToPtr(30), RequestID: "ok-2"},
		{Goal: r3.Vector{X: 30}, SafetyMargin: lo.ToPtr(0.5), MaxTimeSecs: lo.ToPtr(30), RequestID: "outside"},
	}
	data, err := json.Marshal(reqs)
	test.That(t, err, test.ShouldBeNil)
	path := filepath.Join(t.TempDir(), "requests.json")
	test.That(t, os.WriteFile(path, data, 0o600), test.ShouldBeNil)

	out, err := run(t, "--scene", wallScene, "batch", "--requests", path)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "outside")
	test.That(t, out, test.ShouldContainSubstring, "ok-1")
	test.That(t, out, test.ShouldContainSubstring, "ok-2")
	test.That(t, out, test.ShouldContainSubstring, "input_unexplored")
	test.That(t, out, test.ShouldContainSubstring, "2/3 succeeded")

	reqs = reqs[:2]
	data, err = json.Marshal(reqs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, os.WriteFile(path, data, 0o600), test.ShouldBeNil)
	out, err = run(t, "--scene", wallScene, "batch", "--requests", path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "2/2 succeeded")

	test.That(t, os.WriteFile(path, []byte("[]"), 0o600), test.ShouldBeNil)
	_, err = run(t, "--scene", wallScene, "batch", "--requests", path)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBatchCommandDuplicateIDs(t *testing.T) {
	reqs := []motionplan.Request{
		{Goal: r3.Vector{X: 10}, SafetyMargin: lo.ToPtr(0.5), MaxTimeSecs: lo.ToPtr(30), RequestID: "same"},
		{Goal: r3.Vector{X: 30}, SafetyMargin: lo.ToPtr(0.5), MaxTimeSecs: lo.ToPtr(30), RequestID: "same"},
	}
	data, err := json.Marshal(reqs)
	test.That(t, err, test.ShouldBeNil)
	path := filepath.Join(t.TempDir(), "requests.json")
	test.That(t, os.WriteFile(path, data, 0o600), test.ShouldBeNil)

	out, err := run(t, "--scene", wallScene, "batch", "--requests", path)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `duplicate request id "same"`)
	test.That(t, out, test.ShouldBeEmpty)
}

func TestBatchCommandStoredSummary(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	cfg := `{"diagnostics": {"dataset": "nightly", "sqlite_path": "` + filepath.Join(dir, "plans.db") + `"}}`
	test.That(t, os.WriteFile(cfgPath, []byte(cfg), 0o600), test.ShouldBeNil)

	reqPath := filepath.Join(dir, "requests.json")
	requests := `[
		{"goal": {"x": 10}, "safety_margin": 0.5, "max_time_secs": 30},
		{"goal": {"x": 30}, "safety_margin": 0.5, "max_time_secs": 30}
	]`
	test.That(t, os.WriteFile(reqPath, []byte(requests), 0o600), test.ShouldBeNil)

	out, err := run(t, "--config", cfgPath, "--scene", wallScene, "batch", "--requests", reqPath)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, out, test.ShouldContainSubstring, `dataset "nightly": 2 stored, 1 succeeded`)

	out, err = run(t, "--config", cfgPath, "--scene", wallScene, "batch", "--requests", reqPath)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, out, test.ShouldContainSubstring, `dataset "nightly": 4 stored, 2 succeeded`)
}

func TestPlanCommandExplicitZeroBudget(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	cfg := `{"planner": {"default_safety_margin": 0.5, "default_max_time_secs": 5}}`
	test.That(t, os.WriteFile(cfgPath, []byte(cfg), 0o600), test.ShouldBeNil)

	out, err := run(t, "--config", cfgPath, "--scene", emptyScene, "plan", "--start", "0,0,0", "--goal", "10,0,0",
		"--max-time", "0")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, out, test.ShouldContainSubstring, "no path")

	out, err = run(t, "--config", cfgPath, "--scene", emptyScene, "plan", "--start", "0,0,0", "--goal", "10,0,0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "2 waypoints")
}

func TestCheckCommand(t *testing.T) {
	out, err := run(t, "--scene", wallScene, "check", "--start", "0,0,0", "--goal", "10,0,0", "--margin", "0.5")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "is blocked")

	out, err = run(t, "--scene", wallScene, "check", "--start", "3,0,5", "--goal", "7,0,5", "--margin", "0.5", "--json")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, strings.TrimSpace(out), test.ShouldEqual, `{"free":true}`)

	_, err = run(t, "--scene", wallScene, "check", "--start", "3,0,5", "--goal", "7,0,5")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPlotCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "wall.png")
	stdout, err := run(t, "--scene", wallScene, "plot", "--output", out, "--start", "0,0,0", "--goal", "10,0,0",
		"--margin", "0.5", "--max-time", "30")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stdout, test.ShouldContainSubstring, "wrote")
	info, err := os.Stat(out)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)

	_, err = run(t, "--scene", wallScene, "plot", "--output", filepath.Join(dir, "bad.png"), "--start", "0,0,0",
		"--goal", "30,0,0", "--margin", "0.5", "--max-time", "30")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRenderSideView(t *testing.T) {
	scene, err := octree.ReadScene("../octree/testfiles/coarse.json")
	test.That(t, err, test.ShouldBeNil)
	tree, err := scene.Build(logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	out := filepath.Join(t.TempDir(), "coarse.png")
	test.That(t, renderSideView(tree, 0.5, nil, out), test.ShouldBeNil)
	_, err = os.Stat(out)
	test.That(t, err, test.ShouldBeNil)

	// nothing occupied on this plane still renders axes
	empty := filepath.Join(t.TempDir(), "empty.png")
	test.That(t, renderSideView(tree, 100, []r3.Vector{{}, {X: 1, Z: 1}}, empty), test.ShouldBeNil)
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint(" 1.5, -2,3 ")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p, test.ShouldResemble, r3.Vector{X: 1.5, Y: -2, Z: 3})

	for _, bad := range []string{"", "1,2", "1,2,3,4", "a,b,c"} {
		_, err := parsePoint(bad)
		test.That(t, err, test.ShouldNotBeNil)
	}
}
