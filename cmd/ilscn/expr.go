package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/ilscn/app"
	"github.com/ludo-technologies/ilscn/service"
)

// NewExprCmd creates the command printing the expression sequence of one
// method
func NewExprCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expr <manifest> <Type::Method>",
		Short: "Print the expression sequence of a method",
		Long: `Print the expressions a method body folds into, in the order they are
compared.

The method is named "Type::Name" or, for overloads, with its parameter list:
"Type::Name(int32,string)".

Examples:
  ilscn expr bin/Sample.asm.yaml Sample.Calculator::Add
  ilscn expr bin/Sample.asm.yaml 'Sample.Printer::Print(string)'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)
			defer func() { _ = logger.Sync() }()

			useCase, err := app.NewDuplicateUseCaseBuilder().
				WithService(service.NewDuplicateService(nil, logger)).
				WithAssemblyReader(service.NewAssemblyReader()).
				WithFormatter(service.NewDuplicateFormatter()).
				WithLogger(logger).
				Build()
			if err != nil {
				return fmt.Errorf("failed to create use case: %w", err)
			}

			return useCase.ListExpressions(cmd.Context(), args[0], args[1], cmd.OutOrStdout())
		},
	}
}
