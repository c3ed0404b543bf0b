package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/oneko/internal/ipc"
)

func companionStatus(st *ipc.StatusData) CompanionStatus {
	if st == nil {
		return CompanionStatus{}
	}
	return CompanionStatus{
		Mode:          st.Mode,
		LastNonSleep:  st.LastNonSleep,
		Variant:       st.Variant,
		Inverted:      st.Inverted,
		Position:      st.Position,
		Target:        st.Target,
		Animation:     st.Animation,
		Sprite:        st.Sprite,
		Grabbing:      st.Grabbing,
		RoamEdge:      st.RoamEdge,
		DisplayID:     st.DisplayID,
		UptimeSeconds: st.UptimeSeconds,
	}
}

func statusResult(st *ipc.StatusData, err error, action string) (*mcpsdk.CallToolResult, CompanionStatus, error) {
	if err != nil {
		return nil, CompanionStatus{}, fmt.Errorf("%s: %w", action, err)
	}
	return nil, companionStatus(st), nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, CompanionStatus, error) {
	st, err := s.daemon.GetStatus()
	return statusResult(st, err, "failed to get companion status")
}

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	data, err := s.daemon.GetDisplays()
	if err != nil {
		return nil, ListDisplaysOutput{}, fmt.Errorf("failed to list displays: %w", err)
	}

	out := ListDisplaysOutput{Displays: make([]DisplayInfo, 0, len(data.Displays))}
	for _, d := range data.Displays {
		out.Displays = append(out.Displays, DisplayInfo{
			ID:          d.ID,
			Name:        d.Name,
			Primary:     d.Primary,
			Bounds:      d.Bounds,
			WorkArea:    d.WorkArea,
			TaskbarEdge: d.TaskbarEdge,
			SleepTarget: d.SleepTarget,
		})
	}
	return nil, out, nil
}

func (s *Server) handleSetMode(_ context.Context, _ *mcpsdk.CallToolRequest, args SetModeInput) (*mcpsdk.CallToolResult, CompanionStatus, error) {
	if args.Mode == "" {
		return nil, CompanionStatus{}, fmt.Errorf("mode is required")
	}
	st, err := s.daemon.SetMode(args.Mode)
	return statusResult(st, err, "failed to set mode")
}

func (s *Server) handleSetVariant(_ context.Context, _ *mcpsdk.CallToolRequest, args SetVariantInput) (*mcpsdk.CallToolResult, CompanionStatus, error) {
	if args.Variant == "" {
		return nil, CompanionStatus{}, fmt.Errorf("variant is required")
	}
	st, err := s.daemon.SetVariant(args.Variant)
	return statusResult(st, err, "failed to set variant")
}

func (s *Server) handleSetInverted(_ context.Context, _ *mcpsdk.CallToolRequest, args SetInvertedInput) (*mcpsdk.CallToolResult, CompanionStatus, error) {
	st, err := s.daemon.SetInverted(args.Inverted)
	return statusResult(st, err, "failed to set inversion")
}

func (s *Server) handleToggleSleep(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, CompanionStatus, error) {
	st, err := s.daemon.ToggleSleep()
	return statusResult(st, err, "failed to toggle sleep")
}
