package handler

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/domain"
)

// publishMail 将邮件投递到消息队列，由 cmd/mail 异步发送
func (h *Handler) publishMail(mailType string, to string, data any) error {
	body, err := json.Marshal(domain.MailMessage{
		Type: mailType,
		To:   to,
		Data: data,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func resetPasswordMailData(fullName string, otp string, expirationSeconds int) domain.ResetPasswordMailData {
	return domain.ResetPasswordMailData{
		FullName: fullName,
		OTP:      otp,
		// 邮件中显示的过期时间以分钟为单位，而配置中以秒为单位
		Expiration: expirationSeconds / 60,
	}
}

func changeEmailMailData(fullName string, otp string, expirationSeconds int) domain.ChangeEmailMailData {
	return domain.ChangeEmailMailData{
		FullName:   fullName,
		OTP:        otp,
		Expiration: expirationSeconds / 60,
	}
}
