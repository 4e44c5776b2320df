package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	booleanFlagTypeName              = "bool"
	booleanFlagTrueLiteral           = "true"
	booleanFlagAcceptedValuesListing = "true, false, yes, no, on, off, 1, 0"
	errorInvalidBooleanFormat        = "invalid boolean value %q for --%s; accepted values: %s"
)

var booleanFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// switchFlag is a boolean flag that also accepts yes/no and on/off literals, either
// attached with "=" or as the following argument.
type switchFlag struct {
	target *bool
	name   string
}

func parseBooleanLiteral(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = booleanFlagTrueLiteral
	}
	parsed, known := booleanFlagLiterals[normalized]
	return parsed, known
}

func (flag *switchFlag) Set(input string) error {
	parsed, known := parseBooleanLiteral(input)
	if !known {
		return fmt.Errorf(errorInvalidBooleanFormat, input, flag.name, booleanFlagAcceptedValuesListing)
	}
	*flag.target = parsed
	return nil
}

func (flag *switchFlag) String() string {
	if flag == nil || flag.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*flag.target)
}

func (flag *switchFlag) Type() string {
	return booleanFlagTypeName
}

func registerSwitchFlag(flagSet *pflag.FlagSet, target *bool, name string, usage string) {
	*target = false
	flagSet.Var(&switchFlag{target: target, name: name}, name, usage)
	if lookup := flagSet.Lookup(name); lookup != nil {
		lookup.DefValue = strconv.FormatBool(false)
		lookup.NoOptDefVal = booleanFlagTrueLiteral
	}
}

// attachSwitchValues rewrites "--name literal" into "--name=literal" for switch flags so
// the literal is not taken as the positional directory argument.
func attachSwitchValues(command *cobra.Command, arguments []string) []string {
	switchNames := map[string]struct{}{}
	collectSwitchNames(command, switchNames)
	if len(switchNames) == 0 {
		return arguments
	}
	rewritten := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		currentArgument := arguments[index]
		if currentArgument == "--" {
			rewritten = append(rewritten, arguments[index:]...)
			break
		}
		if strings.HasPrefix(currentArgument, "--") && !strings.Contains(currentArgument, "=") && index+1 < len(arguments) {
			flagName := strings.TrimPrefix(currentArgument, "--")
			nextArgument := arguments[index+1]
			if _, isSwitch := switchNames[flagName]; isSwitch && !strings.HasPrefix(nextArgument, "-") {
				if _, known := booleanFlagLiterals[strings.ToLower(strings.TrimSpace(nextArgument))]; known {
					rewritten = append(rewritten, currentArgument+"="+nextArgument)
					index++
					continue
				}
			}
		}
		rewritten = append(rewritten, currentArgument)
	}
	return rewritten
}

func collectSwitchNames(command *cobra.Command, target map[string]struct{}) {
	visit := func(flag *pflag.Flag) {
		if flag.Value != nil && flag.Value.Type() == booleanFlagTypeName {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(visit)
	command.Flags().VisitAll(visit)
	for _, child := range command.Commands() {
		collectSwitchNames(child, target)
	}
}
