// Package modify implements the dird client's "modify" command: it encodes
// a single Modify request onto the wire and prints the decoded reply.
package modify

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dirdkv/dird/cmd/util"
	"github.com/dirdkv/dird/direrr"
	"github.com/dirdkv/dird/rpc/common"
)

var (
	principal  string
	permissive bool
	noOp       bool
	preRead    bool
	postRead   bool

	// ModifyCmd sends one Modify request to a dird server.
	ModifyCmd = &cobra.Command{
		Use:   "modify [dn] [add|delete|replace] [attr] [values...]",
		Short: "Apply a single modification to an entry",
		Long: `Sends one Modify request to the dird server.

Example:
  dird modify "cn=Alice,dc=example,dc=com" replace mail alice@example.com`,
		Args:              cobra.MinimumNArgs(3),
		PersistentPreRunE: bindModifyFlags,
		RunE:              runModify,
	}
)

func init() {
	cobra.OnInitialize(util.InitClientConfig)

	util.SetupRPCClientFlags(ModifyCmd)

	ModifyCmd.Flags().StringVar(&principal, "principal", "", util.WrapString("the DN binding this request is performed as"))
	ModifyCmd.Flags().BoolVar(&permissive, "permissive", false, util.WrapString("tolerate deleting an absent value or adding an existing one"))
	ModifyCmd.Flags().BoolVar(&noOp, "noop", false, util.WrapString("validate and report without committing the modification"))
	ModifyCmd.Flags().BoolVar(&preRead, "preread", false, util.WrapString("request the entry's pre-modification image"))
	ModifyCmd.Flags().BoolVar(&postRead, "postread", false, util.WrapString("request the entry's post-modification image"))
}

func bindModifyFlags(cmd *cobra.Command, _ []string) error {
	return util.BindCommandFlags(cmd)
}

func runModify(_ *cobra.Command, args []string) error {
	dn := args[0]

	op := strings.ToUpper(args[1])
	switch op {
	case "ADD", "DELETE", "REPLACE":
	default:
		return fmt.Errorf("unsupported modification opcode %q (expected add, delete, or replace)", args[1])
	}

	attr := args[2]
	values := args[3:]

	req := common.NewModifyRequest(dn, []common.ModOp{
		{Op: op, Attr: attr, Values: values},
	})
	req.Principal = principal
	req.Permissive = permissive
	req.NoOp = noOp
	req.PreRead = preRead
	req.PostRead = postRead

	resp, err := send(req)
	if err != nil {
		return err
	}

	printReply(resp)
	return nil
}

func send(req *common.Message) (*common.Message, error) {
	config := util.GetClientConfig()

	s, err := util.GetSerializer()
	if err != nil {
		return nil, err
	}

	t, err := util.GetTransport()
	if err != nil {
		return nil, err
	}

	if err := t.Connect(*config); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer t.Close()

	data, err := s.Serialize(*req)
	if err != nil {
		return nil, fmt.Errorf("serialize request: %w", err)
	}

	respData, err := t.Send(data)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	var resp common.Message
	if err := s.Deserialize(respData, &resp); err != nil {
		return nil, fmt.Errorf("deserialize response: %w", err)
	}

	return &resp, nil
}

func printReply(resp *common.Message) {
	if resp.MsgType == common.MsgTError {
		fmt.Printf("error: %s\n", resp.Err)
		return
	}

	code := direrr.ReplyCode(resp.Code)
	fmt.Printf("result: %s\n", code)
	if resp.Text != "" {
		fmt.Printf("text: %s\n", resp.Text)
	}
	for _, ref := range resp.Referrals {
		fmt.Printf("referral: %s\n", ref)
	}
	if resp.PreImage != nil {
		printSnapshot("pre-image", resp.PreImage)
	}
	if resp.PostImage != nil {
		printSnapshot("post-image", resp.PostImage)
	}
}

func printSnapshot(label string, e *common.EntrySnapshot) {
	fmt.Printf("%s: %s\n", label, e.DN)
	for attr, values := range e.Attrs {
		for _, v := range values {
			fmt.Printf("  %s: %s\n", attr, v)
		}
	}
}
