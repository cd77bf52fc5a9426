package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeDB struct {
	err    error
	closed bool
}

func (f *fakeDB) Close(context.Context) error {
	f.closed = true
	return f.err
}

type fakeCloser struct{ closed bool }

func (f *fakeCloser) Close() error {
	f.closed = true
	return errors.New("sink already closed")
}

func deps(db *fakeDB, sink *fakeCloser, dispatched *bool) shutdownDeps {
	return shutdownDeps{
		httpSrv:  &http.Server{},
		obsSrv:   &http.Server{},
		dispatch: func() { *dispatched = true },
		closers:  []io.Closer{sink},
		db:       db,
	}
}

func TestPerformGracefulShutdown_Clean(t *testing.T) {
	db := &fakeDB{}
	sink := &fakeCloser{}
	var dispatched bool

	err := performGracefulShutdown(deps(db, sink, &dispatched), zaptest.NewLogger(t))

	require.NoError(t, err)
	assert.True(t, db.closed)
	assert.True(t, sink.closed)
	assert.True(t, dispatched)
}

func TestPerformGracefulShutdown_DatabaseCloseFails(t *testing.T) {
	db := &fakeDB{err: errors.New("disconnect: connection reset")}
	var dispatched bool

	err := performGracefulShutdown(deps(db, &fakeCloser{}, &dispatched), zaptest.NewLogger(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		name        string
		listenErr   error
		shutdownErr error
		want        int
	}{
		{"clean", nil, nil, 0},
		{"bind failed", errors.New("listen tcp :3000: bind: address already in use"), nil, 1},
		{"close failed", nil, errors.New("error closing MongoDB connection"), 1},
		{"both", errors.New("bind"), errors.New("close"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitStatus(tt.listenErr, tt.shutdownErr, zaptest.NewLogger(t)))
		})
	}
}

func TestExitStatus_PortInUse(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()

	srv := &http.Server{Addr: lis.Addr().String()}
	listenErr := srv.ListenAndServe()
	require.Error(t, listenErr)
	require.NotErrorIs(t, listenErr, http.ErrServerClosed)

	var dispatched bool
	shutdownErr := performGracefulShutdown(deps(&fakeDB{}, &fakeCloser{}, &dispatched), zaptest.NewLogger(t))

	assert.Equal(t, 1, exitStatus(listenErr, shutdownErr, zaptest.NewLogger(t)))
}
