package runforge

import "context"

// ScriptRunner triggers an execution of a script by GUID. ScriptsClient
// satisfies it; it exists so a Script view can carry run behavior without
// holding the full client surface.
type ScriptRunner interface {
	Run(ctx context.Context, guid string, request *RunRequest) (*Execution, error)
}

// Script is the client-side view of a script: the raw resource decorated with
// the ability to trigger runs. ScriptsClient.List attaches NewScript as the
// page transform, so scripts yielded from any page of a traversal keep this
// behavior.
type Script struct {
	ScriptResource

	runner ScriptRunner
}

// NewScript binds a raw script resource to a runner.
func NewScript(resource ScriptResource, runner ScriptRunner) *Script {
	return &Script{
		ScriptResource: resource,
		runner:         runner,
	}
}

// Run triggers an execution of this script.
func (s *Script) Run(ctx context.Context, request *RunRequest) (*Execution, error) {
	return s.runner.Run(ctx, s.GUID, request)
}
