package builtin

import (
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/signature"
	"github.com/shale-sh/shale/value"
	"github.com/shale-sh/shale/version"
)

// versionCommand reports the build as a record so the fields compose
// with get and where like any other data.
type versionCommand struct{}

func (c *versionCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("version").
			Input(value.NothingType).
			Output(value.RecordType).
			WithCategory("core").
			WithDesc("Show the running build as a record."),
	}
}

func (c *versionCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	info := version.GetVersionInfo()

	rec := &value.Record{}
	_ = rec.Insert("version", value.String(info.Version, cc.Head))
	_ = rec.Insert("commit", value.String(info.GitCommit, cc.Head))
	_ = rec.Insert("branch", value.String(info.GitBranch, cc.Head))
	_ = rec.Insert("build_time", value.String(info.BuildTime, cc.Head))
	_ = rec.Insert("go_version", value.String(info.GoVersion, cc.Head))
	_ = rec.Insert("release", value.Bool(info.IsRelease, cc.Head))
	_ = rec.Insert("dirty", value.Bool(info.IsDirty, cc.Head))
	return pipeline.FromValue(value.NewRecord(rec, cc.Head)), nil
}
