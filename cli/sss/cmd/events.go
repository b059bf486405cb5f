package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sss-org/sss-engine/events"
	"github.com/sss-org/sss-engine/keyvaluedb/boltdb"
	"github.com/sss-org/sss-engine/rpc"
)

type eventsFlags struct {
	engineFlags
	From  uint64
	Limit int
}

func newEventsCmd(baseConfig *baseConfiguration) *cobra.Command {
	flags := &eventsFlags{}
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Prints records of the event journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listEvents(cmd, baseConfig, flags)
		},
	}
	flags.addDBFlag(cmd)
	cmd.Flags().Uint64Var(&flags.From, "from", 1, "sequence number of the first record")
	cmd.Flags().IntVar(&flags.Limit, "limit", events.DefaultListLimit, "maximum number of records")
	return cmd
}

func listEvents(cmd *cobra.Command, base *baseConfiguration, flags *eventsFlags) (rErr error) {
	db, err := openDB(base.stateDBFile(flags.DBFile), boltdb.ReadOnly())
	if err != nil {
		return err
	}
	defer func() { rErr = errors.Join(rErr, db.Close()) }()

	journal, err := events.NewJournal(db)
	if err != nil {
		return fmt.Errorf("opening events journal: %w", err)
	}
	records, err := journal.List(flags.From, flags.Limit)
	if err != nil {
		return err
	}
	rsp, err := rpc.NewEventsResponse(records, journal.LastSeq())
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), rsp)
}
