package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sss-org/sss-engine/events"
	"github.com/sss-org/sss-engine/keyvaluedb/boltdb"
	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/txsystem"
	"github.com/sss-org/sss-engine/txsystem/stablecoin"
	"github.com/sss-org/sss-engine/types"
)

type engineFlags struct {
	DBFile        string
	EpochDuration uint64
}

func (f *engineFlags) addDBFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.DBFile, "db", "", fmt.Sprintf("state database file, relative path is relative from $SSS_HOME (default %s)", defaultStateDBFile))
}

func (f *engineFlags) addFlags(cmd *cobra.Command) {
	f.addDBFlag(cmd)
	cmd.Flags().Uint64Var(&f.EpochDuration, "epoch-duration", types.DefaultEpochPeriod, "length of the mint epoch quota window in seconds")
}

/*
engine is the stablecoin tx system opened on the bolt database, events
journal shares the database with the state.
*/
type engine struct {
	db      *boltdb.BoltDB
	sys     *stablecoin.TxSystem
	journal *events.Journal
}

func openEngine(base *baseConfiguration, flags *engineFlags, opts ...boltdb.Option) (*engine, error) {
	db, err := openDB(base.stateDBFile(flags.DBFile), opts...)
	if err != nil {
		return nil, err
	}
	journal, err := events.NewJournal(db)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("opening events journal: %w", err), db.Close())
	}
	store, err := state.NewStore(db)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("creating state store: %w", err), db.Close())
	}
	sysOpts := []txsystem.Option{txsystem.WithEventSink(journal)}
	if flags.EpochDuration != 0 {
		sysOpts = append(sysOpts, txsystem.WithEpochDuration(flags.EpochDuration))
	}
	sys, err := stablecoin.NewTxSystem(store, base.observe, sysOpts...)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("creating tx system: %w", err), db.Close())
	}
	return &engine{db: db, sys: sys, journal: journal}, nil
}

func (e *engine) Close() error {
	return e.db.Close()
}

func openDB(file string, opts ...boltdb.Option) (*boltdb.BoltDB, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
		return nil, fmt.Errorf("creating directory for state database: %w", err)
	}
	db, err := boltdb.New(file, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening state database %s: %w", file, err)
	}
	return db, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// identityFlag is cli flag for identity in base58 encoding, implements github.com/spf13/pflag/flag.go#Value interface
type identityFlag struct {
	id types.Identity
}

func (f *identityFlag) String() string {
	if f.id.IsZero() {
		return ""
	}
	return f.id.String()
}

func (f *identityFlag) Set(v string) error {
	id, err := types.ParseIdentity(v)
	if err != nil {
		return err
	}
	f.id = id
	return nil
}

// Type used to show the type value in the help contex
func (f *identityFlag) Type() string {
	return "identity"
}
