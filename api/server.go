package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/julio4/light-evm/bytecode"
	"github.com/julio4/light-evm/vm"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ServerConfig struct {
	ListenerAddr string
	Logger       *zap.Logger

	// MaxSteps and MaxStack bound every run. Zero means unbounded.
	MaxSteps uint64
	MaxStack int
}

type Server struct {
	ServerConfig

	echo   *echo.Echo
	logger *zap.Logger
}

func NewServer(config ServerConfig) (*Server, error) {
	if config.Logger == nil {
		config.Logger = zap.L()
	}
	if config.MaxSteps == 0 {
		return nil, errors.New("api server needs a step bound")
	}
	s := &Server{
		ServerConfig: config,
		logger:       config.Logger.Named("api"),
	}

	e := echo.New()
	e.HideBanner = true
	e.POST("/run", s.handleRun)
	e.GET("/opcodes", s.handleOpcodes)
	s.echo = e

	return s, nil
}

func (s *Server) Start() error {
	s.logger.Info("api server starting",
		zap.String("addr", s.ListenerAddr))

	return s.echo.Start(s.ListenerAddr)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleRun(ectx echo.Context) error {
	req := new(RunRequest)
	if err := ectx.Bind(req); err != nil {
		return ectx.JSON(http.StatusBadRequest,
			ErrorResponse{Error: err.Error()})
	}

	code, err := bytecode.ParseHex(req.Bytecode)
	if err != nil {
		return ectx.JSON(http.StatusBadRequest,
			ErrorResponse{Error: err.Error()})
	}

	machine := vm.NewVM(code,
		vm.LoggerOpt(s.logger),
		vm.MaxStepsOpt(s.MaxSteps),
		vm.MaxStackOpt(s.MaxStack),
	)
	if err := machine.Run(); err != nil {
		s.logger.Debug("run failed",
			zap.String("bytecode", bytecode.ToHex(code)),
			zap.Error(err),
		)
		snap := machine.Snapshot()
		var execErr *vm.ExecError
		if errors.As(err, &execErr) {
			snap = execErr.State()
		}
		return ectx.JSON(http.StatusUnprocessableEntity,
			ErrorResponse{Error: err.Error(), State: &snap})
	}

	return ectx.JSON(http.StatusOK,
		RunResponse{
			Stack: machine.Stack(),
			PC:    machine.PC(),
			Steps: machine.Steps(),
		})
}

func (s *Server) handleOpcodes(ectx echo.Context) error {
	var out []OpcodeInfo
	for _, op := range vm.Opcodes() {
		inst, err := vm.Decode(byte(op))
		if err != nil {
			return ectx.JSON(http.StatusInternalServerError,
				ErrorResponse{Error: err.Error()})
		}
		out = append(out, OpcodeInfo{
			Opcode: fmt.Sprintf("0x%02x", byte(op)),
			Name:   op.String(),
			Size:   inst.Size(),
		})
	}
	return ectx.JSON(http.StatusOK, out)
}
