package sns

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

func TestSendSMS_PrefixesCountryCode(t *testing.T) {
	p := &mockPublisher{}
	p.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		attr, ok := in.MessageAttributes["AWS.SNS.SMS.SMSType"]
		return aws.ToString(in.PhoneNumber) == "+8613812345678" &&
			aws.ToString(in.Message) == "code 123456" &&
			ok && aws.ToString(attr.StringValue) == "Transactional"
	})).Return(&sns.PublishOutput{MessageId: aws.String("m1")}, nil)

	err := newSender(p, "+86").SendSMS(context.Background(), "13812345678", "code 123456")

	assert.NoError(t, err)
	p.AssertExpectations(t)
}

func TestSendSMS_Error(t *testing.T) {
	p := &mockPublisher{}
	p.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("opted out"))

	err := newSender(p, "+86").SendSMS(context.Background(), "13812345678", "x")

	assert.ErrorContains(t, err, "opted out")
}
