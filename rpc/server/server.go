package server

import (
	"fmt"

	"github.com/lni/dragonboat/v4/logger"

	"github.com/dirdkv/dird/dispatch"
	"github.com/dirdkv/dird/rpc/common"
	"github.com/dirdkv/dird/rpc/serializer"
	"github.com/dirdkv/dird/rpc/transport"
)

var Logger = logger.GetLogger("rpc")

// NewRPCServer creates a new RPC server that dispatches decoded Modify
// requests to d over transport, using serializer to decode/encode wire
// messages.
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		dispatcher,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	d *dispatch.Dispatcher,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) rpcServer {
	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	return rpcServer{
		config:     config,
		dispatcher: d,
		adapter:    NewModifyServerAdapter(),
		transport:  transport,
		serializer: serializer,
	}
}

type rpcServer struct {
	config     common.ServerConfig
	dispatcher *dispatch.Dispatcher
	adapter    IRPCServerAdapter
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		if err := s.serializer.Deserialize(req, &msg); err != nil {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to deserialize request: %s", err),
			}
		} else {
			respMsg = *s.adapter.Handle(&msg, s.dispatcher)
		}

		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to serialize response: %s", err),
			}
			val, _ = s.serializer.Serialize(respMsg)
		}
		return val
	})
}

// Serve starts the RPC server: it wires the transport handler and begins
// listening.
func (s *rpcServer) Serve() error {
	common.InitLoggers(s.config)
	s.registerTransportHandler()
	return s.transport.Listen(s.config)
}
