package action

// Action type names.
const (
	TypeCreateProject   = "create-project"
	TypeCleanupDefaults = "cleanup-defaults"
	TypeSetupStructure  = "setup-structure"
	TypeStepBegin       = "step-begin"
	TypeStepComplete    = "step-complete"
	TypeRender          = "render"
	TypeEnsureDir       = "ensure-dir"
	TypeCopyIcon        = "copy-icon"
	TypeAdaptiveIcon    = "adaptive-icon"
	TypeInstallPackages = "install-packages"
	TypeFinish          = "finish"
)

// Payload is the typed configuration of one action.
type Payload interface {
	ActionType() string
}

// CreateProject runs the external project-creation command in BaseDir.
type CreateProject struct {
	BaseDir  string `json:"base_dir" yaml:"base_dir"`
	Slug     string `json:"slug" yaml:"slug"`
	StepName string `json:"step_name" yaml:"step_name"` // reported by the handler itself
}

// CleanupDefaults removes template default artifacts from ProjectDir.
type CleanupDefaults struct {
	ProjectDir string `json:"project_dir" yaml:"project_dir"`
}

// SetupStructure creates the source folder tree and rewrites the entry point.
type SetupStructure struct {
	ProjectDir string `json:"project_dir" yaml:"project_dir"`
}

// StepBegin opens a bracket so untracked actions report as one logical step.
type StepBegin struct {
	Step string `json:"step" yaml:"step"`
}

// StepComplete closes a bracket opened by StepBegin.
type StepComplete struct {
	Step string `json:"step" yaml:"step"`
}

// RenderTemplate renders Template with the run's answers to Path.
type RenderTemplate struct {
	Template string `json:"template" yaml:"template"`
	Path     string `json:"path" yaml:"path"`
	Force    bool   `json:"force,omitempty" yaml:"force,omitempty"`
}

// EnsureDir creates Path if missing; Keep writes a .gitkeep inside.
type EnsureDir struct {
	Path string `json:"path" yaml:"path"`
	Keep bool   `json:"keep,omitempty" yaml:"keep,omitempty"`
}

// CopyIcon validates and copies one variant's icon.
type CopyIcon struct {
	Variant string `json:"variant" yaml:"variant"`
	Source  string `json:"source" yaml:"source"`
	Dest    string `json:"dest" yaml:"dest"`
}

// AdaptiveIcon generates one variant's adaptive icon from the copied icon.
type AdaptiveIcon struct {
	Variant string `json:"variant" yaml:"variant"`
	Source  string `json:"source" yaml:"source"`
	Dest    string `json:"dest" yaml:"dest"`
}

// InstallPackages rewrites package.json and installs dependencies.
type InstallPackages struct {
	ProjectDir string `json:"project_dir" yaml:"project_dir"`
}

// Finish computes and reports the run summary.
type Finish struct{}

func (CreateProject) ActionType() string   { return TypeCreateProject }
func (CleanupDefaults) ActionType() string { return TypeCleanupDefaults }
func (SetupStructure) ActionType() string  { return TypeSetupStructure }
func (StepBegin) ActionType() string       { return TypeStepBegin }
func (StepComplete) ActionType() string    { return TypeStepComplete }
func (RenderTemplate) ActionType() string  { return TypeRender }
func (EnsureDir) ActionType() string       { return TypeEnsureDir }
func (CopyIcon) ActionType() string        { return TypeCopyIcon }
func (AdaptiveIcon) ActionType() string    { return TypeAdaptiveIcon }
func (InstallPackages) ActionType() string { return TypeInstallPackages }
func (Finish) ActionType() string          { return TypeFinish }
