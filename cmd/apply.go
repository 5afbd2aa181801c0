package cmd

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"reclass.dev/pkg/reclass/internal/adapter"
	"reclass.dev/pkg/reclass/internal/domain"
	"reclass.dev/pkg/reclass/internal/mapping/nested"
	"reclass.dev/pkg/reclass/internal/model"
	"reclass.dev/pkg/reclass/internal/transform"
)

var (
	sourceFlag         string
	targetFlag         string
	mappingFiles       []string
	csvClassesFlag     string
	csvFieldsFlag      string
	csvMethodsFlag     string
	csvParamsFlag      string
	accessMapFiles     []string
	innerMapFlag       string
	correctAccessFlag  bool
	stripSourceFlag    bool
	stripLinesFlag     bool
	stripLocalsFlag    bool
	stripGenericsFlag  bool
	sourceOverrideVal  string
	lineOverrideVal    int
	renameLocalsFlag   string
	numberLocalsFlag   string
	fixInnerCtorsFlag  bool
	overrideParamsFlag bool
	applyParallelFlag  int
	noRelocateFlag     bool
)

const applyLongDescription = `Apply the configured transformation passes to every class file under
the source tree and write the result into the target tree.

Passes run in a fixed order: access correction, renaming, access
mapping, inner-class reconstruction, constructor synthesis, attribute
stripping, source overrides. Files excluded by --exclude are skipped;
resources and classes the passes do not touch are copied byte for byte.`

// applyCmd represents the apply command.
var applyCmd = newApplyCmd()

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Transform a class tree",
		Long:  applyLongDescription,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApply(cmd.Context())
		},
	}

	configureApplyFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func configureApplyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&sourceFlag, sourceFlagName, "s", "", "source tree URL (directory or archive)")
	cmd.Flags().StringVarP(&targetFlag, targetFlagName, "t", "", "target tree URL")
	cmd.Flags().StringArrayVarP(&mappingFiles, mappingsFlagName, "m", nil, "srg mapping file (can be repeated; later files see earlier renames)")
	cmd.Flags().StringVar(&csvClassesFlag, "csv-classes", "", "csv class rename table")
	cmd.Flags().StringVar(&csvFieldsFlag, "csv-fields", "", "csv field rename table")
	cmd.Flags().StringVar(&csvMethodsFlag, "csv-methods", "", "csv method rename table")
	cmd.Flags().StringVar(&csvParamsFlag, "csv-params", "", "csv parameter rename table")
	cmd.Flags().StringArrayVar(&accessMapFiles, "access-map", nil, "csv access flag table (can be repeated)")
	cmd.Flags().StringVar(&innerMapFlag, innerMapFlagName, "", "yaml structural map for inner-class reconstruction")
	cmd.Flags().BoolVar(&correctAccessFlag, correctAccessFlagName, false, "widen method access to match the inheritance hierarchy")
	cmd.Flags().BoolVar(&stripSourceFlag, stripSourceFlagName, false, "strip SourceFile attributes")
	cmd.Flags().BoolVar(&stripLinesFlag, stripLinesFlagName, false, "strip line number tables")
	cmd.Flags().BoolVar(&stripLocalsFlag, stripLocalsFlagName, false, "strip local variable tables")
	cmd.Flags().BoolVar(&stripGenericsFlag, stripGenericsFlagName, false, "strip generic signature attributes")
	cmd.Flags().StringVar(&sourceOverrideVal, sourceOverrideFlag, "", "replace every SourceFile value")
	cmd.Flags().IntVar(&lineOverrideVal, lineOverrideFlagName, -1, "replace every line number with a fixed value")
	cmd.Flags().StringVar(&renameLocalsFlag, "rename-locals", "", "rename every local variable to a fixed name")
	cmd.Flags().StringVar(&numberLocalsFlag, "number-locals", "", "replace local variable names starting with the given placeholder by var<slot>")
	cmd.Flags().BoolVar(&fixInnerCtorsFlag, "fix-inner-ctors", false, "synthesize missing inner-class constructors")
	cmd.Flags().BoolVar(&overrideParamsFlag, "override-params", false, "rewrite MethodParameters entries in addition to local variable tables")
	cmd.Flags().IntVarP(&applyParallelFlag, parallelFlagName, "p", viper.GetInt(parallelConfigKey), "number of parallel workers")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), parallelConfigKey)
	cmd.Flags().BoolVar(&noRelocateFlag, noRelocateFlagName, !viper.GetBool(relocateConfigKey), "keep transformed classes at their original paths")

	cobra.CheckErr(cmd.MarkFlagRequired(sourceFlagName))
	cobra.CheckErr(cmd.MarkFlagRequired(targetFlagName))
}

func runApply(ctx context.Context) error {
	transformers, err := buildTransformers(ctx)
	if err != nil {
		return err
	}

	opts, err := buildRunOptions()
	if err != nil {
		return err
	}

	orchestrator := domain.NewOrchestrator(
		adapter.NewTree(sourceFlag),
		adapter.NewTree(targetFlag),
		transformers,
		opts,
	)

	ui.DisplayRunInfo(ctx, sourceFlag, targetFlag, opts.Threads)

	results, err := orchestrator.Apply(ctx)

	_ = ui.DisplaySummary(ctx, results)

	if err != nil {
		ui.DisplayFailure(ctx, err)
		return err
	}

	return nil
}

func buildRunOptions() (model.RunOptions, error) {
	opts := model.DefaultRunOptions()
	opts.Threads = applyParallelFlag
	opts.SourceRelocation = !noRelocateFlag

	patterns := viper.GetStringSlice(excludeConfigKey)
	if len(patterns) == 0 {
		return opts, nil
	}

	excluded := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return model.RunOptions{}, fmt.Errorf("exclude pattern %q: %w", p, err)
		}

		excluded = append(excluded, re)
	}

	admit := func(path model.Path) bool {
		for _, re := range excluded {
			if re.MatchString(string(path)) {
				return false
			}
		}

		return true
	}

	opts.ClassInclusionVoter = admit
	opts.ResourceVoter = admit

	return opts, nil
}

func buildTransformers(ctx context.Context) ([]transform.Transformer, error) {
	var transformers []transform.Transformer

	if correctAccessFlag {
		transformers = append(transformers, transform.AccessCorrection{})
	}

	names, err := buildNameMapping(ctx)
	if err != nil {
		return nil, err
	}

	if len(names) > 0 {
		transformers = append(transformers, &transform.Remap{
			Mapping:            names,
			OverrideParameters: overrideParamsFlag,
		})
	}

	access, err := buildAccessMapping(ctx)
	if err != nil {
		return nil, err
	}

	if len(access) > 0 {
		transformers = append(transformers, &transform.AccessApply{Mapping: access})
	}

	if innerMapFlag != "" {
		data, err := readFile(ctx, innerMapFlag)
		if err != nil {
			return nil, err
		}

		structure, err := nested.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", innerMapFlag, err)
		}

		transformers = append(transformers, &transform.InnerClasses{Structure: structure})
	}

	if fixInnerCtorsFlag {
		transformers = append(transformers, transform.InnerConstructor{})
	}

	strip := &transform.Strip{
		SourceFile:     stripSourceFlag,
		LineNumbers:    stripLinesFlag,
		LocalVariables: stripLocalsFlag,
		Signatures:     stripGenericsFlag,
	}
	if stripSourceFlag || stripLinesFlag || stripLocalsFlag || stripGenericsFlag {
		transformers = append(transformers, strip)
	}

	if sourceOverrideVal != "" || lineOverrideVal >= 0 {
		override, err := transform.NewSourceOverride(sourceOverrideVal, lineOverrideVal)
		if err != nil {
			return nil, err
		}

		transformers = append(transformers, override)
	}

	if renameLocalsFlag != "" {
		transformers = append(transformers, &transform.LocalVariableOverride{Name: renameLocalsFlag})
	}

	if numberLocalsFlag != "" {
		transformers = append(transformers, &transform.LocalVariableNumbering{Placeholder: numberLocalsFlag})
	}

	return transformers, nil
}
